package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/userboard/artifact"
	"github.com/BaSui01/userboard/config"
	"github.com/BaSui01/userboard/types"
)

// boardResponder scripts every model-facing stage by dispatching on the
// system prompt each stage sends.
type boardResponder struct {
	mu           sync.Mutex
	calls        int
	failIdeation bool
}

const featureBatch = `[
{"name": "Crash Shield", "description": "Automatic state recovery after a crash.",
 "problem_addressed": "crashes", "target_personas": ["Marcus"],
 "value_proposition": "no lost work", "review_evidence": ["crash_0"]},
{"name": "Sync Sentinel", "description": "Background sync with conflict detection.",
 "problem_addressed": "sync", "target_personas": ["Marcus"],
 "value_proposition": "trustworthy data", "review_evidence": ["crash_1"]},
{"name": "Session Vault", "description": "Encrypted local backup of session data.",
 "problem_addressed": "data loss", "target_personas": ["Marcus"],
 "value_proposition": "peace of mind", "review_evidence": ["crash_2"]}
]`

func (r *boardResponder) Ask(_ context.Context, prompt, system string) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	switch {
	case strings.Contains(system, "product strategist"):
		if r.failIdeation {
			return "I cannot produce JSON today.", nil
		}
		return featureBatch, nil
	case strings.Contains(system, "product analyst"):
		return "## Recommendation\nGo on Crash Shield.", nil
	case strings.Contains(system, "facilitator"):
		if strings.Contains(prompt, "warrant one short follow-up") {
			return "NO_FOLLOWUP", nil
		}
		return "What would this change for you day to day?", nil
	default:
		return "I would rely on this every day.", nil
	}
}

// corpus returns two well-separated review groups large enough to pass
// every downstream size filter.
func corpus() []types.Review {
	var reviews []types.Review
	for i := 0; i < 15; i++ {
		reviews = append(reviews, types.Review{
			ID:          fmt.Sprintf("crash_%d", i),
			CleanedText: fmt.Sprintf("the app crashes constantly crash error and my data was lost filler%d", i),
			Rating:      1,
			Sentiment:   types.Sentiment{Compound: -0.75, Negative: 0.4, Neutral: 0.6},
		})
	}
	for i := 0; i < 10; i++ {
		reviews = append(reviews, types.Review{
			ID:          fmt.Sprintf("praise_%d", i),
			CleanedText: fmt.Sprintf("love it amazing great love this wonderful experience filler%d", i+100),
			Rating:      5,
			Sentiment:   types.Sentiment{Compound: 0.8, Positive: 0.5, Neutral: 0.5},
		})
	}
	return reviews
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Cluster.MinDF = 2
	cfg.Cluster.MinClusterSize = 5
	cfg.Persona.MinClusterSize = 5
	cfg.Discussion.Rounds = 1
	return cfg
}

func newTestPipeline(t *testing.T, responder Responder) (*Pipeline, *artifact.Store) {
	t.Helper()
	sink, err := artifact.NewFSWriter(t.TempDir(), nil)
	require.NoError(t, err)
	db, err := artifact.OpenSQLite(":memory:")
	require.NoError(t, err)
	store, err := artifact.NewStore(db, nil)
	require.NoError(t, err)
	return New(testConfig(), responder, sink, store, zap.NewNop(), nil), store
}

func TestPipeline_EndToEnd(t *testing.T) {
	p, store := newTestPipeline(t, &boardResponder{})

	res, err := p.Run(context.Background(), corpus())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Clusters, 2)
	assert.NotEmpty(t, res.Personas)
	require.Len(t, res.Features, 3)
	assert.Equal(t, "Crash Shield", res.Features[0].Name)
	assert.NotEmpty(t, res.Transcript)
	assert.Contains(t, res.Summary, "Recommendation")

	// Every stage artifact landed on disk and in the result map.
	for _, name := range []string{
		"clusters.json", "pain_points.json", "personas.json",
		"features.json", "transcript.json", "summary.md", "report.md",
	} {
		loc, ok := res.Artifacts[name]
		require.True(t, ok, "missing artifact %s", name)
		_, err := os.Stat(loc)
		assert.NoError(t, err, "artifact %s not on disk", name)
	}

	run, artifacts, err := store.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, artifact.RunStatusSuccess, run.Status)
	assert.Equal(t, 25, run.ReviewCount)
	assert.Equal(t, 2, run.ClusterCount)
	assert.Equal(t, len(res.Transcript), run.TurnCount)
	assert.Len(t, artifacts, 7)
}

func TestPipeline_FailureKeepsEarlierArtifacts(t *testing.T) {
	p, store := newTestPipeline(t, &boardResponder{failIdeation: true})

	res, err := p.Run(context.Background(), corpus())
	require.Error(t, err)
	assert.Equal(t, types.ErrSchemaValidation, types.GetErrorCode(err))

	assert.False(t, res.Success)
	assert.Contains(t, res.Cause, string(types.ErrSchemaValidation))

	// Stages before the failure are kept, on disk and in the result.
	assert.NotEmpty(t, res.Clusters)
	assert.NotEmpty(t, res.Personas)
	assert.Empty(t, res.Features)
	for _, name := range []string{"clusters.json", "pain_points.json", "personas.json"} {
		loc, ok := res.Artifacts[name]
		require.True(t, ok, "missing artifact %s", name)
		_, err := os.Stat(loc)
		assert.NoError(t, err)
	}
	_, ok := res.Artifacts["features.json"]
	assert.False(t, ok)

	run, artifacts, err := store.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, artifact.RunStatusFailed, run.Status)
	assert.Contains(t, run.Cause, string(types.ErrSchemaValidation))
	assert.Len(t, artifacts, 3)
}

func TestPipeline_TooSmallCorpusFails(t *testing.T) {
	p, _ := newTestPipeline(t, &boardResponder{})

	res, err := p.Run(context.Background(), corpus()[:5])
	require.Error(t, err)
	assert.Equal(t, types.ErrDataQuality, types.GetErrorCode(err))
	assert.False(t, res.Success)
	assert.Empty(t, res.Artifacts)
}

func TestPipeline_RunCSV(t *testing.T) {
	p, _ := newTestPipeline(t, &boardResponder{})

	var sb strings.Builder
	sb.WriteString("review_id,content,score\n")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, "crash_%d,the app crashes constantly crash error and my data was lost filler%d,1\n", i, i)
	}
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "praise_%d,love it amazing great love this wonderful experience filler%d,5\n", i, i+100)
	}

	res, err := p.RunCSV(context.Background(), strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Reviews, 25)
	assert.Len(t, res.Clusters, 2)
}

func TestRunner_FailureIsolation(t *testing.T) {
	p, _ := newTestPipeline(t, &boardResponder{})
	runner := NewRunner(p, zap.NewNop())

	items := []BatchItem{
		{Name: "healthy", Reviews: corpus()},
		{Name: "tiny", Reviews: corpus()[:3]},
		{Name: "healthy-2", Reviews: corpus()},
	}
	results := runner.RunAll(context.Background(), items)
	require.Len(t, results, 3)

	// Results come back in item order; one failure leaves siblings alone.
	assert.Equal(t, "healthy", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Result.Success)

	assert.Equal(t, "tiny", results[1].Name)
	require.Error(t, results[1].Err)
	require.NotNil(t, results[1].Result)
	assert.Equal(t, types.ErrDataQuality, types.GetErrorCode(results[1].Err))

	require.NoError(t, results[2].Err)
	assert.True(t, results[2].Result.Success)

	// Distinct run IDs keep shared-sink artifacts apart.
	assert.NotEqual(t, results[0].Result.RunID, results[2].Result.RunID)
}
