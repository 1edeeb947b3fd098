package types

// FacilitatorName is the reserved speaker name of the non-persona agent
// that drives the discussion agenda.
const FacilitatorName = "facilitator"

// TurnKind classifies a transcript entry.
type TurnKind string

const (
	TurnQuestion TurnKind = "question"
	TurnAnswer   TurnKind = "answer"
	TurnFollowUp TurnKind = "followup"
	TurnClosing  TurnKind = "closing"
)

// DiscussionTurn is a single transcript entry. The transcript's insertion
// order is the sole source of truth for "who said what when".
type DiscussionTurn struct {
	Speaker string   `json:"speaker"` // FacilitatorName or a persona name
	Round   int      `json:"round"`   // 0 for welcome/closing
	Kind    TurnKind `json:"kind"`
	Text    string   `json:"text"`
}
