// Package ideation asks the model for feature proposals grounded in
// aggregated pain points and personas, then enforces a strict local
// validation contract on the response.
package ideation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// Responder is the single-call LLM surface this package needs.
type Responder interface {
	Ask(ctx context.Context, prompt, system string) (string, error)
}

// Config bounds the accepted batch size.
type Config struct {
	MinFeatures int
	MaxFeatures int
}

// DefaultConfig returns the defaults used by the pipeline.
func DefaultConfig() Config {
	return Config{MinFeatures: 3, MaxFeatures: 5}
}

// genericNames are rejected as feature names regardless of casing.
var genericNames = map[string]bool{
	"feature":     true,
	"improvement": true,
	"fix":         true,
	"update":      true,
	"enhancement": true,
	"change":      true,
}

// Generator issues one structured request and validates the result.
type Generator struct {
	responder Responder
	cfg       Config
	logger    *zap.Logger
}

// NewGenerator creates a feature proposal generator.
func NewGenerator(responder Responder, cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinFeatures <= 0 {
		cfg.MinFeatures = 3
	}
	if cfg.MaxFeatures < cfg.MinFeatures {
		cfg.MaxFeatures = cfg.MinFeatures
	}
	return &Generator{
		responder: responder,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "ideation")),
	}
}

// Generate performs the single external call and returns the validated
// proposals. Salvage keeps conformant elements when some fail; the batch
// is rejected only when fewer than MinFeatures survive.
func (g *Generator) Generate(ctx context.Context, painPoints []types.PainPoint, personas []types.Persona) ([]types.FeatureProposal, error) {
	raw, err := g.responder.Ask(ctx, g.buildPrompt(painPoints, personas), systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("feature generation call: %w", err)
	}

	proposals, dropped, err := g.parseAndValidate(raw)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		g.logger.Warn("dropped non-conformant proposals", zap.Int("dropped", dropped))
	}
	g.logger.Info("feature proposals accepted", zap.Int("count", len(proposals)))
	return proposals, nil
}

const systemPrompt = "You are a product strategist. You turn user research into concrete, " +
	"specifically named feature proposals. Respond with only a JSON array, no prose."

func (g *Generator) buildPrompt(painPoints []types.PainPoint, personas []types.Persona) string {
	var sb strings.Builder
	sb.WriteString("User research for a mobile app follows.\n\nTop pain points:\n")
	for _, pp := range painPoints {
		fmt.Fprintf(&sb, "- %s: severity %.2f, %d reviews, clusters %v\n",
			pp.Category, pp.Severity, pp.TotalCount, pp.AffectedClusters)
	}

	sb.WriteString("\nPersonas:\n")
	for _, p := range personas {
		fmt.Fprintf(&sb, "- %s (%s, %d, %s; cluster %d): pain points: %s\n",
			p.Name, p.Profile.Role, p.Profile.Age, p.Profile.Location,
			p.ClusterSource, strings.Join(p.PainPoints, "; "))
	}

	fmt.Fprintf(&sb, "\nPropose between %d and %d features addressing these pain points.\n",
		g.cfg.MinFeatures, g.cfg.MaxFeatures)
	sb.WriteString(`Respond with a JSON array where each element has exactly these fields:
{"name": "specific feature name", "description": "what it does, at least one sentence",
"problem_addressed": "the pain point it solves", "target_personas": ["persona names"],
"value_proposition": "why users will care", "review_evidence": ["review ids"]}
Names must be specific (never just "feature", "fix" or "improvement") and unique.`)
	return sb.String()
}

type proposalJSON struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ProblemAddressed string   `json:"problem_addressed"`
	TargetPersonas   []string `json:"target_personas"`
	ValueProposition string   `json:"value_proposition"`
	ReviewEvidence   []string `json:"review_evidence"`
}

func (g *Generator) parseAndValidate(raw string) ([]types.FeatureProposal, int, error) {
	var elems []proposalJSON
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &elems); err != nil {
		return nil, 0, types.NewError(types.ErrSchemaValidation,
			"feature response is not a JSON array").WithCause(err)
	}

	seen := make(map[string]bool)
	proposals := make([]types.FeatureProposal, 0, g.cfg.MaxFeatures)
	dropped := 0
	for _, e := range elems {
		if len(proposals) == g.cfg.MaxFeatures {
			break
		}
		if reason := validateProposal(e, seen); reason != "" {
			dropped++
			g.logger.Debug("rejecting proposal",
				zap.String("name", e.Name), zap.String("reason", reason))
			continue
		}
		seen[strings.ToLower(e.Name)] = true
		proposals = append(proposals, types.FeatureProposal{
			Name:             strings.TrimSpace(e.Name),
			Description:      strings.TrimSpace(e.Description),
			ProblemAddressed: strings.TrimSpace(e.ProblemAddressed),
			TargetPersonas:   e.TargetPersonas,
			ValueProposition: strings.TrimSpace(e.ValueProposition),
			ReviewEvidence:   e.ReviewEvidence,
		})
	}

	if len(proposals) < g.cfg.MinFeatures {
		return nil, dropped, types.NewError(types.ErrSchemaValidation,
			fmt.Sprintf("only %d of the required %d feature proposals validated",
				len(proposals), g.cfg.MinFeatures))
	}
	return proposals, dropped, nil
}

// validateProposal returns "" for a conformant element, otherwise the
// rejection reason.
func validateProposal(e proposalJSON, seen map[string]bool) string {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return "empty name"
	}
	if genericNames[strings.ToLower(name)] {
		return "generic name"
	}
	if seen[strings.ToLower(name)] {
		return "duplicate name"
	}
	if len(strings.Fields(e.Description)) < 3 {
		return "description under three words"
	}
	if len(e.TargetPersonas) == 0 {
		return "no target personas"
	}
	return ""
}
