package discussion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/userboard/types"
)

// scriptedResponder routes each Ask through a test callback and records
// every call.
type scriptedResponder struct {
	mu    sync.Mutex
	calls []scriptedCall
	onAsk func(prompt, system string) (string, error)
}

type scriptedCall struct {
	prompt string
	system string
}

func (s *scriptedResponder) Ask(_ context.Context, prompt, system string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, scriptedCall{prompt: prompt, system: system})
	s.mu.Unlock()
	return s.onAsk(prompt, system)
}

func isFollowupPrompt(prompt string) bool {
	return strings.Contains(prompt, "warrant one short follow-up")
}

func isFacilitator(system string) bool {
	return strings.Contains(system, "facilitator")
}

// quietPanel answers every prompt and never triggers follow-ups.
func quietPanel() *scriptedResponder {
	return &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		switch {
		case isFollowupPrompt(prompt):
			return NoFollowupMarker, nil
		case isFacilitator(system):
			return "facilitator speaks", nil
		default:
			return "persona answers", nil
		}
	}}
}

func twoPersonas() []types.Persona {
	return []types.Persona{
		{Name: "Marcus", Profile: types.PersonaProfile{Age: 34, Role: "ops manager", Location: "Chicago"},
			Background: "Marcus handles daily operations.", UsagePattern: "daily",
			PainPoints: []string{"crashes"}, ClusterSource: 0},
		{Name: "Priya", Profile: types.PersonaProfile{Age: 27, Role: "engineer", Location: "Bangalore"},
			Background: "Priya automates everything.", UsagePattern: "heavy",
			PainPoints: []string{"sync loss"}, ClusterSource: 2},
	}
}

func twoFeatures() []types.FeatureProposal {
	return []types.FeatureProposal{
		{Name: "Crash Shield", Description: "automatic crash recovery", TargetPersonas: []string{"Marcus"}},
		{Name: "Sync Sentinel", Description: "verified background sync", TargetPersonas: []string{"Priya"}},
	}
}

func TestSession_TwoPersonasTwoFeaturesTwoRounds(t *testing.T) {
	cfg := Config{Rounds: 2, FollowupCap: 1, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, quietPanel(), twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	out, err := sess.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDone, sess.State())

	// 1 welcome + 2 rounds x (1 question + 2 answers) + 1 closing = 8 turns.
	require.Len(t, out.Transcript, 8)
	assert.Len(t, out.History, len(out.Transcript),
		"shared history and transcript must stay in lockstep")

	expected := []struct {
		speaker string
		round   int
		kind    types.TurnKind
	}{
		{types.FacilitatorName, 0, types.TurnQuestion},
		{types.FacilitatorName, 1, types.TurnQuestion},
		{"Marcus", 1, types.TurnAnswer},
		{"Priya", 1, types.TurnAnswer},
		{types.FacilitatorName, 2, types.TurnQuestion},
		{"Marcus", 2, types.TurnAnswer},
		{"Priya", 2, types.TurnAnswer},
		{types.FacilitatorName, 0, types.TurnClosing},
	}
	for i, want := range expected {
		assert.Equal(t, want.speaker, out.Transcript[i].Speaker, "turn %d speaker", i)
		assert.Equal(t, want.round, out.Transcript[i].Round, "turn %d round", i)
		assert.Equal(t, want.kind, out.Transcript[i].Kind, "turn %d kind", i)
		assert.NotEmpty(t, out.Transcript[i].Text, "turn %d text", i)
	}
}

func TestSession_FollowupAddsProbeAndAnswer(t *testing.T) {
	probed := false
	responder := &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		switch {
		case isFollowupPrompt(prompt):
			if !probed {
				probed = true
				return "Can you say more about that?", nil
			}
			return NoFollowupMarker, nil
		case isFacilitator(system):
			return "facilitator speaks", nil
		default:
			return "persona answers", nil
		}
	}}

	cfg := Config{Rounds: 1, FollowupCap: 1, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	out, err := sess.Run(context.Background())
	require.NoError(t, err)

	// Base 1+1+2+1 = 5 turns, plus one follow-up question and one re-answer.
	require.Len(t, out.Transcript, 7)
	assert.Equal(t, types.TurnFollowUp, out.Transcript[3].Kind)
	assert.Equal(t, types.FacilitatorName, out.Transcript[3].Speaker)
	assert.Equal(t, "Marcus", out.Transcript[4].Speaker)
	assert.Equal(t, types.TurnAnswer, out.Transcript[4].Kind)
}

func TestSession_FollowupCapBoundsTheLoop(t *testing.T) {
	// The facilitator never declines a follow-up; the cap must stop it.
	responder := &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		if isFollowupPrompt(prompt) {
			return "And what about the price?", nil
		}
		if isFacilitator(system) {
			return "facilitator speaks", nil
		}
		return "persona answers", nil
	}}

	cfg := Config{Rounds: 2, FollowupCap: 2, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	out, err := sess.Run(context.Background())
	require.NoError(t, err)

	followups := 0
	for _, turn := range out.Transcript {
		if turn.Kind == types.TurnFollowUp {
			followups++
		}
	}
	// 2 personas x 2 rounds x cap 2.
	assert.Equal(t, 8, followups)
}

func TestSession_RoundRobinFairness(t *testing.T) {
	personas := append(twoPersonas(), types.Persona{
		Name: "Sofia", Profile: types.PersonaProfile{Age: 22, Role: "student", Location: "Madrid"},
		Background: "Sofia is a casual user.", UsagePattern: "weekly", ClusterSource: 4,
	})
	cfg := Config{Rounds: 3, FollowupCap: 1, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, quietPanel(), personas, twoFeatures(), nil, nil)
	require.NoError(t, err)

	out, err := sess.Run(context.Background())
	require.NoError(t, err)

	answersBySpeaker := map[string]int{}
	for _, turn := range out.Transcript {
		if turn.Kind == types.TurnAnswer {
			answersBySpeaker[turn.Speaker]++
		}
	}
	assert.Equal(t, map[string]int{"Marcus": 3, "Priya": 3, "Sofia": 3}, answersBySpeaker)

	// Within every round the panel speaks in the fixed persona order.
	for round := 1; round <= 3; round++ {
		var speakers []string
		for _, turn := range out.Transcript {
			if turn.Round == round && turn.Kind == types.TurnAnswer {
				speakers = append(speakers, turn.Speaker)
			}
		}
		assert.Equal(t, []string{"Marcus", "Priya", "Sofia"}, speakers, "round %d", round)
	}
}

func TestSession_SkipPolicyRecordsPlaceholder(t *testing.T) {
	responder := &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		switch {
		case strings.Contains(system, "Priya"):
			return "", errors.New("model unavailable")
		case isFollowupPrompt(prompt):
			return NoFollowupMarker, nil
		case isFacilitator(system):
			return "facilitator speaks", nil
		default:
			return "persona answers", nil
		}
	}}

	cfg := Config{Rounds: 2, FollowupCap: 1, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	out, err := sess.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Transcript, 8, "a skipped persona still holds its slot")

	assert.Contains(t, out.Transcript[3].Text, "could not respond")
	assert.Equal(t, "Priya", out.Transcript[3].Speaker)
}

func TestSession_AbortPolicyStopsTheSession(t *testing.T) {
	responder := &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		if strings.Contains(system, "Priya") {
			return "", errors.New("model unavailable")
		}
		if isFacilitator(system) {
			return "facilitator speaks", nil
		}
		return "persona answers", nil
	}}

	cfg := Config{Rounds: 2, FollowupCap: 0, OnAgentFailure: FailureAbort}
	sess, err := NewSession(cfg, responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	_, err = sess.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrAgentFailure, types.GetErrorCode(err))
}

func TestSession_FacilitatorFailureAlwaysAborts(t *testing.T) {
	responder := &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		if isFacilitator(system) {
			return "", errors.New("model unavailable")
		}
		return "persona answers", nil
	}}

	sess, err := NewSession(DefaultConfig(), responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	_, err = sess.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrAgentFailure, types.GetErrorCode(err))
}

func TestSession_PersonaIdentityStaysInSystemPrompt(t *testing.T) {
	responder := quietPanel()
	cfg := Config{Rounds: 1, FollowupCap: 0, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	_, err = sess.Run(context.Background())
	require.NoError(t, err)

	var sawMarcus bool
	for _, call := range responder.calls {
		if strings.Contains(call.system, "You are Marcus") {
			sawMarcus = true
			assert.Contains(t, call.system, "Marcus handles daily operations.")
			// Identity lives in the system prompt, not in the shared history.
			assert.Contains(t, call.prompt, "Discussion so far:")
		}
	}
	assert.True(t, sawMarcus)
}

func TestSession_LaterPersonaSeesEarlierAnswerSameRound(t *testing.T) {
	responder := &scriptedResponder{onAsk: func(prompt, system string) (string, error) {
		switch {
		case isFollowupPrompt(prompt):
			return NoFollowupMarker, nil
		case isFacilitator(system):
			return "facilitator speaks", nil
		case strings.Contains(system, "Marcus"):
			return "marcus distinctive answer", nil
		default:
			return "priya answers", nil
		}
	}}

	cfg := Config{Rounds: 1, FollowupCap: 1, OnAgentFailure: FailureSkip}
	sess, err := NewSession(cfg, responder, twoPersonas(), twoFeatures(), nil, nil)
	require.NoError(t, err)

	_, err = sess.Run(context.Background())
	require.NoError(t, err)

	var priyaPrompt string
	for _, call := range responder.calls {
		if strings.Contains(call.prompt, "As Priya,") {
			priyaPrompt = call.prompt
		}
	}
	require.NotEmpty(t, priyaPrompt)
	assert.Contains(t, priyaPrompt, "marcus distinctive answer")
}

func TestNewSession_ValidatesInputs(t *testing.T) {
	_, err := NewSession(DefaultConfig(), quietPanel(), nil, twoFeatures(), nil, nil)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	_, err = NewSession(DefaultConfig(), quietPanel(), twoPersonas(), nil, nil, nil)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))

	cfg := DefaultConfig()
	cfg.OnAgentFailure = "retry"
	_, err = NewSession(cfg, quietPanel(), twoPersonas(), twoFeatures(), nil, nil)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestQuestionForRound(t *testing.T) {
	assert.Equal(t, coreQuestions[0], questionForRound(1))
	assert.Equal(t, coreQuestions[len(coreQuestions)-1], questionForRound(len(coreQuestions)))
	assert.Equal(t, genericQuestion, questionForRound(len(coreQuestions)+1))
	assert.Equal(t, genericQuestion, questionForRound(99))
}
