// Package discussion runs the simulated user board: a facilitator and a
// fixed panel of persona agents working through a bounded Q&A agenda.
// The structure of a session is deterministic; only the spoken content
// comes from the model.
package discussion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/internal/metrics"
	"github.com/BaSui01/userboard/types"
)

// FailurePolicy decides what happens when a persona agent errors out.
type FailurePolicy string

const (
	// FailureSkip records a placeholder turn and moves on.
	FailureSkip FailurePolicy = "skip"
	// FailureAbort stops the session with an AGENT_FAILURE error.
	FailureAbort FailurePolicy = "abort"
)

// State names the session's position in its fixed lifecycle.
type State string

const (
	StateWelcome State = "WELCOME"
	StateRound   State = "ROUND"
	StateClosing State = "CLOSING"
	StateDone    State = "DONE"
)

// Config controls session shape.
type Config struct {
	// Rounds is the number of Q&A rounds.
	Rounds int
	// FollowupCap bounds facilitator follow-ups per persona per round.
	FollowupCap int
	// OnAgentFailure picks the persona failure policy. Default skip.
	OnAgentFailure FailurePolicy
	// HistoryTokenBudget truncates the rendered history to approximately
	// this many tokens, keeping the most recent turns. 0 disables it.
	HistoryTokenBudget int
}

// DefaultConfig returns the defaults used by the pipeline.
func DefaultConfig() Config {
	return Config{
		Rounds:         3,
		FollowupCap:    1,
		OnAgentFailure: FailureSkip,
	}
}

// Outcome is the finished session: the ordered transcript and the shared
// history log. They are the same sequence by construction; both are kept
// so callers can verify the invariant.
type Outcome struct {
	Transcript []types.DiscussionTurn
	History    []string
}

// Session owns the shared append-only history and drives the agenda.
type Session struct {
	cfg         Config
	facilitator *Agent
	panel       []*Agent
	features    []types.FeatureProposal

	state      State
	transcript []types.DiscussionTurn
	history    []string
	counter    *tokenCounter

	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewSession seats the facilitator and one agent per persona. Panel
// order follows the persona slice, which carries the cluster priority
// order from synthesis.
func NewSession(cfg Config, responder Responder, personas []types.Persona, features []types.FeatureProposal, logger *zap.Logger, collector *metrics.Collector) (*Session, error) {
	if len(personas) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "a session needs at least one persona")
	}
	if len(features) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "a session needs at least one feature to discuss")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultConfig().Rounds
	}
	if cfg.FollowupCap < 0 {
		cfg.FollowupCap = 0
	}
	if cfg.OnAgentFailure == "" {
		cfg.OnAgentFailure = FailureSkip
	}
	if cfg.OnAgentFailure != FailureSkip && cfg.OnAgentFailure != FailureAbort {
		return nil, types.NewError(types.ErrInvalidRequest,
			fmt.Sprintf("unknown failure policy %q", cfg.OnAgentFailure))
	}

	logger = logger.With(zap.String("component", "discussion_session"))
	panel := make([]*Agent, 0, len(personas))
	for _, p := range personas {
		panel = append(panel, NewPersonaAgent(p, responder))
	}

	return &Session{
		cfg:         cfg,
		facilitator: NewFacilitatorAgent(responder),
		panel:       panel,
		features:    features,
		state:       StateWelcome,
		counter:     newTokenCounter(logger),
		metrics:     collector,
		logger:      logger,
	}, nil
}

// State reports where the session is in its lifecycle.
func (s *Session) State() State { return s.state }

// Run drives WELCOME, the configured rounds, and CLOSING, returning the
// completed transcript.
func (s *Session) Run(ctx context.Context) (*Outcome, error) {
	s.logger.Info("session starting",
		zap.Int("personas", len(s.panel)),
		zap.Int("features", len(s.features)),
		zap.Int("rounds", s.cfg.Rounds))

	if err := s.welcome(ctx); err != nil {
		return nil, err
	}

	s.state = StateRound
	for round := 1; round <= s.cfg.Rounds; round++ {
		if err := s.runRound(ctx, round); err != nil {
			return nil, err
		}
	}

	s.state = StateClosing
	if err := s.closing(ctx); err != nil {
		return nil, err
	}

	s.state = StateDone
	s.logger.Info("session finished", zap.Int("turns", len(s.transcript)))
	return &Outcome{Transcript: s.transcript, History: s.history}, nil
}

func (s *Session) welcome(ctx context.Context) error {
	prompt := fmt.Sprintf(
		"You are opening a user feedback panel with %d participants.\n\nFeatures under discussion:\n%s\nWelcome the panel briefly and frame the session.",
		len(s.panel), s.featureList())

	text, err := s.facilitator.Respond(ctx, prompt)
	if err != nil {
		return types.NewError(types.ErrAgentFailure, "facilitator failed to open the session").WithCause(err)
	}
	s.append(types.DiscussionTurn{
		Speaker: s.facilitator.Name(), Round: 0, Kind: types.TurnQuestion, Text: text,
	})
	return nil
}

func (s *Session) runRound(ctx context.Context, round int) error {
	question := questionForRound(round)
	prompt := fmt.Sprintf("%s\nPose this question to the panel for round %d: %q",
		s.historyBlock(), round, question)

	text, err := s.facilitator.Respond(ctx, prompt)
	if err != nil {
		return types.NewError(types.ErrAgentFailure,
			fmt.Sprintf("facilitator failed to open round %d", round)).WithCause(err)
	}
	s.append(types.DiscussionTurn{
		Speaker: s.facilitator.Name(), Round: round, Kind: types.TurnQuestion, Text: text,
	})

	// Fixed panel order; answers append immediately so later personas see
	// earlier answers from the same round.
	for _, agent := range s.panel {
		if err := s.personaTurn(ctx, agent, round, types.TurnAnswer); err != nil {
			return err
		}
		if err := s.followups(ctx, agent, round); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) personaTurn(ctx context.Context, agent *Agent, round int, kind types.TurnKind) error {
	prompt := fmt.Sprintf(
		"%s\nAs %s, respond to the facilitator's latest message from your own experience.",
		s.historyBlock(), agent.Name())

	text, err := agent.Respond(ctx, prompt)
	if err != nil {
		if s.cfg.OnAgentFailure == FailureAbort {
			return types.NewError(types.ErrAgentFailure,
				fmt.Sprintf("persona %s failed in round %d", agent.Name(), round)).WithCause(err)
		}
		s.logger.Warn("persona turn failed, skipping",
			zap.String("persona", agent.Name()),
			zap.Int("round", round),
			zap.Error(err))
		text = fmt.Sprintf("(%s could not respond)", agent.Name())
	}
	s.append(types.DiscussionTurn{Speaker: agent.Name(), Round: round, Kind: kind, Text: text})
	return nil
}

// followups lets the facilitator probe the persona's last answer, at
// most FollowupCap times. A response carrying the no-follow-up marker
// ends the loop without adding a turn.
func (s *Session) followups(ctx context.Context, agent *Agent, round int) error {
	for i := 0; i < s.cfg.FollowupCap; i++ {
		prompt := fmt.Sprintf(
			"%s\nDoes %s's last answer warrant one short follow-up question? If yes, ask it directly. If not, reply with exactly %s.",
			s.historyBlock(), agent.Name(), NoFollowupMarker)

		text, err := s.facilitator.Respond(ctx, prompt)
		if err != nil {
			// Follow-ups are optional probing; a facilitator hiccup here
			// drops the probe rather than the session.
			s.logger.Warn("follow-up decision failed",
				zap.String("persona", agent.Name()), zap.Error(err))
			return nil
		}
		if strings.Contains(text, NoFollowupMarker) {
			return nil
		}

		s.append(types.DiscussionTurn{
			Speaker: s.facilitator.Name(), Round: round, Kind: types.TurnFollowUp, Text: text,
		})
		if err := s.personaTurn(ctx, agent, round, types.TurnAnswer); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) closing(ctx context.Context) error {
	prompt := s.historyBlock() + "\nThank the panel and close the session in a few sentences."

	text, err := s.facilitator.Respond(ctx, prompt)
	if err != nil {
		return types.NewError(types.ErrAgentFailure, "facilitator failed to close the session").WithCause(err)
	}
	s.append(types.DiscussionTurn{
		Speaker: s.facilitator.Name(), Round: 0, Kind: types.TurnClosing, Text: text,
	})
	return nil
}

// append is the single writer to the shared log. Transcript and history
// grow in lockstep.
func (s *Session) append(turn types.DiscussionTurn) {
	s.transcript = append(s.transcript, turn)
	s.history = append(s.history, fmt.Sprintf("%s: %s", turn.Speaker, turn.Text))
	s.metrics.RecordDiscussionTurn(string(turn.Kind))
}

// historyBlock renders the shared history for a prompt, applying the
// optional token budget to the oldest entries first.
func (s *Session) historyBlock() string {
	entries := s.counter.truncateToBudget(s.history, s.cfg.HistoryTokenBudget)
	return "Discussion so far:\n" + strings.Join(entries, "\n")
}

func (s *Session) featureList() string {
	var sb strings.Builder
	for i, f := range s.features {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, f.Name, f.Description)
	}
	return sb.String()
}
