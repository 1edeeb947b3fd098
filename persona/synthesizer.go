// Package persona turns analyzed review clusters into a bounded list of
// user personas that later seed the discussion panel.
package persona

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// Config controls cluster selection and persona construction.
type Config struct {
	// MaxPersonas caps how many personas are synthesized.
	MaxPersonas int
	// MinClusterSize excludes clusters too small to represent a user group.
	MinClusterSize int
	// MaxPainPoints caps pain points and needs per persona.
	MaxPainPoints int
}

// DefaultConfig returns the defaults used by the pipeline.
func DefaultConfig() Config {
	return Config{
		MaxPersonas:    5,
		MinClusterSize: 20,
		MaxPainPoints:  3,
	}
}

// Synthesizer builds personas from clusters using rule-based archetypes.
type Synthesizer struct {
	cfg    Config
	logger *zap.Logger
}

// NewSynthesizer creates a persona synthesizer.
func NewSynthesizer(cfg Config, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPersonas <= 0 {
		cfg.MaxPersonas = 5
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = 20
	}
	if cfg.MaxPainPoints <= 0 {
		cfg.MaxPainPoints = 3
	}
	return &Synthesizer{cfg: cfg, logger: logger.With(zap.String("component", "persona_synthesizer"))}
}

// Synthesize selects the largest eligible clusters and builds one persona
// per cluster. Output order follows the selection order (size descending,
// urgency then cluster ID as tie-breakers); that order later becomes the
// facilitation order in the discussion.
func (s *Synthesizer) Synthesize(clusters []types.Cluster) ([]types.Persona, error) {
	selected := make([]types.Cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.Size >= s.cfg.MinClusterSize {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return nil, types.NewError(types.ErrDataQuality,
			fmt.Sprintf("no cluster reaches the minimum size of %d for persona synthesis", s.cfg.MinClusterSize))
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Size != selected[j].Size {
			return selected[i].Size > selected[j].Size
		}
		if selected[i].UrgencyScore != selected[j].UrgencyScore {
			return selected[i].UrgencyScore > selected[j].UrgencyScore
		}
		return selected[i].ID < selected[j].ID
	})
	if len(selected) > s.cfg.MaxPersonas {
		selected = selected[:s.cfg.MaxPersonas]
	}

	personas := make([]types.Persona, 0, len(selected))
	for _, c := range selected {
		p := s.buildPersona(c)
		s.logger.Debug("persona synthesized",
			zap.String("name", p.Name),
			zap.Int("cluster", p.ClusterSource),
			zap.Int("cluster_size", c.Size))
		personas = append(personas, p)
	}
	return personas, nil
}

func (s *Synthesizer) buildPersona(c types.Cluster) types.Persona {
	kind := classifyArchetype(c)
	pool := pools[kind]

	// Deterministic template picks keyed by cluster ID keep reruns stable
	// without any shared random state.
	pick := func(n int) int {
		if n == 0 {
			return 0
		}
		return c.ID % n
	}

	painPoints := make([]string, 0, s.cfg.MaxPainPoints)
	needs := make([]string, 0, s.cfg.MaxPainPoints)
	for _, sig := range c.FeatureRequests {
		if len(painPoints) == s.cfg.MaxPainPoints {
			break
		}
		if phrase, ok := painPhrases[sig.Category]; ok {
			painPoints = append(painPoints, phrase)
		}
		if phrase, ok := needPhrases[sig.Category]; ok {
			needs = append(needs, phrase)
		}
	}
	if len(painPoints) == 0 {
		painPoints = append(painPoints, "the app does not fit how I actually work")
		needs = append(needs, "the product to reflect feedback like mine")
	}

	profile := types.PersonaProfile{
		Age:      pool.ages[pick(len(pool.ages))],
		Role:     pool.roles[pick(len(pool.roles))],
		Location: pool.locations[pick(len(pool.locations))],
	}
	name := pool.names[pick(len(pool.names))]

	background := fmt.Sprintf(
		"%s is a %d-year-old %s from %s. Their experience reflects %d reviews: %s. Recurring themes: %s.",
		name, profile.Age, profile.Role, profile.Location,
		c.Size, painPoints[0], strings.Join(c.Keywords, ", "))

	return types.Persona{
		Name:              name,
		Profile:           profile,
		Background:        background,
		PainPoints:        painPoints,
		Needs:             needs,
		UsagePattern:      pool.usagePatterns[pick(len(pool.usagePatterns))],
		EvidenceReviewIDs: append([]string(nil), c.SampleReviewIDs...),
		ClusterSource:     c.ID,
	}
}
