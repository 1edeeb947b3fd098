// Package summary condenses a finished discussion transcript into a
// structured decision report.
package summary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// Responder is the single-call LLM surface this package needs.
type Responder interface {
	Ask(ctx context.Context, prompt, system string) (string, error)
}

// Summarizer turns a transcript into a markdown meeting report.
type Summarizer struct {
	responder Responder
	logger    *zap.Logger
}

// NewSummarizer creates a meeting summarizer.
func NewSummarizer(responder Responder, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		responder: responder,
		logger:    logger.With(zap.String("component", "summarizer")),
	}
}

const systemPrompt = "You are a product analyst writing a decision memo from a user " +
	"board transcript. Be specific and cite participants by name."

// Summarize issues one model call. A failure never propagates: the
// report degrades to an error note so the pipeline can still finish and
// keep its artifacts.
func (s *Summarizer) Summarize(ctx context.Context, transcript []types.DiscussionTurn, personas []types.Persona, features []types.FeatureProposal) string {
	report, err := s.responder.Ask(ctx, s.buildPrompt(transcript, personas, features), systemPrompt)
	if err != nil {
		s.logger.Error("summary generation failed", zap.Error(err))
		return fmt.Sprintf("summary generation failed: %v", err)
	}
	return report
}

func (s *Summarizer) buildPrompt(transcript []types.DiscussionTurn, personas []types.Persona, features []types.FeatureProposal) string {
	var sb strings.Builder

	sb.WriteString("Participants:\n")
	for _, p := range personas {
		fmt.Fprintf(&sb, "- %s (%s, %d, %s)\n", p.Name, p.Profile.Role, p.Profile.Age, p.Profile.Location)
	}

	sb.WriteString("\nFeatures discussed:\n")
	for _, f := range features {
		fmt.Fprintf(&sb, "- %s: %s\n", f.Name, f.Description)
	}

	sb.WriteString("\nTranscript:\n")
	for _, turn := range transcript {
		fmt.Fprintf(&sb, "[round %d, %s] %s: %s\n", turn.Round, turn.Kind, turn.Speaker, turn.Text)
	}

	sb.WriteString(`
Write a markdown meeting summary with exactly these four sections:
## Feature Feedback (pros and cons per feature)
## Participant Sentiment (per persona)
## Agreements and Disagreements
## Recommendation (go / no-go per feature, with reasoning)`)
	return sb.String()
}
