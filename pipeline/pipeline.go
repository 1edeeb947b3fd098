// Package pipeline wires the full run: ingest, clustering, analysis,
// persona synthesis, feature ideation, board discussion, summary and
// artifact persistence.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/userboard/artifact"
	"github.com/BaSui01/userboard/cluster"
	"github.com/BaSui01/userboard/config"
	"github.com/BaSui01/userboard/discussion"
	"github.com/BaSui01/userboard/ideation"
	"github.com/BaSui01/userboard/ingest"
	"github.com/BaSui01/userboard/internal/metrics"
	"github.com/BaSui01/userboard/persona"
	"github.com/BaSui01/userboard/summary"
	"github.com/BaSui01/userboard/types"
)

// Responder is the LLM surface shared by every model-calling stage.
type Responder interface {
	Ask(ctx context.Context, prompt, system string) (string, error)
}

// Result is the outcome of one run. On failure the fields populated by
// completed stages remain set, and their artifacts stay on disk.
type Result struct {
	RunID   string
	Success bool
	Cause   string

	Reviews    []types.Review
	Clusters   []types.Cluster
	PainPoints []types.PainPoint
	Personas   []types.Persona
	Features   []types.FeatureProposal
	Transcript []types.DiscussionTurn
	Summary    string

	// Artifacts maps artifact name to its written location.
	Artifacts map[string]string
}

// Pipeline runs the stages sequentially with shared dependencies.
type Pipeline struct {
	cfg       *config.Config
	responder Responder
	sink      artifact.Sink
	store     *artifact.Store

	metrics *metrics.Collector
	logger  *zap.Logger
}

// New assembles a pipeline. store may be nil (no run persistence);
// sink must not be.
func New(cfg *config.Config, responder Responder, sink artifact.Sink, store *artifact.Store, logger *zap.Logger, collector *metrics.Collector) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		responder: responder,
		sink:      sink,
		store:     store,
		metrics:   collector,
		logger:    logger.With(zap.String("component", "pipeline")),
	}
}

// RunCSV loads the corpus from r and runs the pipeline.
func (p *Pipeline) RunCSV(ctx context.Context, r io.Reader) (*Result, error) {
	loader := ingest.NewLoader(p.logger)
	reviews, err := loader.LoadCSV(r)
	if err != nil {
		return &Result{Cause: causeOf(err)}, err
	}
	return p.Run(ctx, reviews)
}

// Run executes every stage over an already-ingested corpus. Stage
// artifacts are written as soon as a stage completes, so a later
// failure never discards earlier outputs.
func (p *Pipeline) Run(ctx context.Context, reviews []types.Review) (*Result, error) {
	res := &Result{Reviews: reviews, Artifacts: map[string]string{}}

	var run *artifact.Run
	if p.store != nil {
		var err error
		run, err = p.store.CreateRun()
		if err != nil {
			return res, err
		}
		res.RunID = run.ID
	} else {
		res.RunID = uuid.NewString()
	}
	p.logger.Info("run starting", zap.String("run_id", res.RunID), zap.Int("reviews", len(reviews)))

	err := p.runStages(ctx, res)
	p.finishRun(run, res, err)
	if err != nil {
		res.Cause = causeOf(err)
		p.metrics.RecordPipelineRun("failed")
		return res, err
	}
	res.Success = true
	p.metrics.RecordPipelineRun("success")
	p.logger.Info("run finished", zap.String("run_id", res.RunID), zap.Int("turns", len(res.Transcript)))
	return res, nil
}

func (p *Pipeline) runStages(ctx context.Context, res *Result) error {
	texts := make([]string, len(res.Reviews))
	for i, rv := range res.Reviews {
		texts[i] = rv.CleanedText
	}

	engine := cluster.NewEngine(
		cluster.EngineConfig{
			MinK:    p.cfg.Cluster.MinK,
			MaxK:    p.cfg.Cluster.MaxK,
			Seed:    p.cfg.Cluster.Seed,
			NInit:   p.cfg.Cluster.NInit,
			MaxIter: p.cfg.Cluster.MaxIterations,
		},
		cluster.VectorizerConfig{
			MaxFeatures: p.cfg.Cluster.MaxFeatures,
			MinDF:       p.cfg.Cluster.MinDF,
			MaxDFRatio:  p.cfg.Cluster.MaxDFRatio,
			Stopwords:   cluster.DefaultDomainStopwords,
		},
		p.logger)

	clusterRes, err := timed(p.metrics, "clustering", func() (*cluster.Result, error) {
		return engine.Run(texts)
	})
	if err != nil {
		return fmt.Errorf("clustering: %w", err)
	}

	analyzer := cluster.NewAnalyzer(cluster.AnalyzerConfig{
		MinClusterSize: p.cfg.Cluster.MinClusterSize,
		SampleSeed:     p.cfg.Cluster.Seed,
	}, p.logger)
	res.Clusters, err = timed(p.metrics, "analysis", func() ([]types.Cluster, error) {
		return analyzer.Analyze(res.Reviews, clusterRes)
	})
	if err != nil {
		return fmt.Errorf("cluster analysis: %w", err)
	}
	res.PainPoints = cluster.AggregatePainPoints(res.Clusters)
	p.writeArtifact(res, "clusters.json", res.Clusters)
	p.writeArtifact(res, "pain_points.json", res.PainPoints)

	synth := persona.NewSynthesizer(persona.Config{
		MaxPersonas:    p.cfg.Persona.MaxPersonas,
		MinClusterSize: p.cfg.Persona.MinClusterSize,
	}, p.logger)
	res.Personas, err = timed(p.metrics, "personas", func() ([]types.Persona, error) {
		return synth.Synthesize(res.Clusters)
	})
	if err != nil {
		return fmt.Errorf("persona synthesis: %w", err)
	}
	p.writeArtifact(res, "personas.json", res.Personas)

	generator := ideation.NewGenerator(p.responder, ideation.Config{
		MinFeatures: p.cfg.Ideation.MinFeatures,
		MaxFeatures: p.cfg.Ideation.MaxFeatures,
	}, p.logger)
	res.Features, err = timed(p.metrics, "ideation", func() ([]types.FeatureProposal, error) {
		return generator.Generate(ctx, res.PainPoints, res.Personas)
	})
	if err != nil {
		return fmt.Errorf("feature ideation: %w", err)
	}
	p.writeArtifact(res, "features.json", res.Features)

	session, err := discussion.NewSession(discussion.Config{
		Rounds:             p.cfg.Discussion.Rounds,
		FollowupCap:        p.cfg.Discussion.FollowupCap,
		OnAgentFailure:     discussion.FailurePolicy(p.cfg.Discussion.OnAgentFailure),
		HistoryTokenBudget: p.cfg.Discussion.HistoryTokenBudget,
	}, p.responder, res.Personas, res.Features, p.logger, p.metrics)
	if err != nil {
		return fmt.Errorf("discussion setup: %w", err)
	}
	outcome, err := timed(p.metrics, "discussion", func() (*discussion.Outcome, error) {
		return session.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("discussion: %w", err)
	}
	res.Transcript = outcome.Transcript
	p.writeArtifact(res, "transcript.json", res.Transcript)

	summarizer := summary.NewSummarizer(p.responder, p.logger)
	start := time.Now()
	res.Summary = summarizer.Summarize(ctx, res.Transcript, res.Personas, res.Features)
	p.metrics.RecordStageDuration("summary", time.Since(start))
	p.writeRaw(res, "summary.md", []byte(res.Summary))

	report := artifact.RenderReport(artifact.ReportInput{
		RunID:      res.RunID,
		Clusters:   res.Clusters,
		PainPoints: res.PainPoints,
		Personas:   res.Personas,
		Features:   res.Features,
		Transcript: res.Transcript,
		Summary:    res.Summary,
	})
	p.writeRaw(res, "report.md", []byte(report))
	return nil
}

// timed wraps a stage with duration metrics.
func timed[T any](c *metrics.Collector, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	c.RecordStageDuration(stage, time.Since(start))
	return out, err
}

func (p *Pipeline) writeArtifact(res *Result, name string, v any) {
	loc, err := artifact.WriteJSON(p.sink, res.artifactName(name), v)
	if err != nil {
		p.logger.Warn("artifact write failed", zap.String("name", name), zap.Error(err))
		return
	}
	res.Artifacts[name] = loc
	p.recordArtifact(res.RunID, name, loc)
}

func (p *Pipeline) writeRaw(res *Result, name string, content []byte) {
	loc, err := p.sink.Write(res.artifactName(name), content)
	if err != nil {
		p.logger.Warn("artifact write failed", zap.String("name", name), zap.Error(err))
		return
	}
	res.Artifacts[name] = loc
	p.recordArtifact(res.RunID, name, loc)
}

func (p *Pipeline) recordArtifact(runID, name, loc string) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordArtifact(runID, name, loc); err != nil {
		p.logger.Warn("artifact record failed", zap.String("name", name), zap.Error(err))
	}
}

// artifactName prefixes artifact files with the short run ID so
// concurrent runs sharing a sink never collide.
func (r *Result) artifactName(name string) string {
	if len(r.RunID) >= 8 {
		return r.RunID[:8] + "_" + name
	}
	return r.RunID + "_" + name
}

func (p *Pipeline) finishRun(run *artifact.Run, res *Result, runErr error) {
	if p.store == nil || run == nil {
		return
	}
	run.ReviewCount = len(res.Reviews)
	run.ClusterCount = len(res.Clusters)
	run.PersonaCount = len(res.Personas)
	run.FeatureCount = len(res.Features)
	run.TurnCount = len(res.Transcript)

	status, cause := artifact.RunStatusSuccess, ""
	if runErr != nil {
		status, cause = artifact.RunStatusFailed, causeOf(runErr)
	}
	if err := p.store.FinishRun(run, status, cause); err != nil {
		p.logger.Warn("run finalize failed", zap.Error(err))
	}
}

func causeOf(err error) string {
	if code := types.GetErrorCode(err); code != "" {
		return fmt.Sprintf("%s: %v", code, err)
	}
	return err.Error()
}
