package types

// PersonaProfile holds the demographic fields of a synthesized persona.
type PersonaProfile struct {
	Age      int    `json:"age"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

// Persona is a synthetic user profile standing in for one cluster of
// feedback. ClusterSource is a hard invariant: every persona traces back
// to exactly one originating cluster. Personas are immutable once created.
//
// Name uniqueness is NOT guaranteed by construction; callers that need
// unique display names must deduplicate themselves.
type Persona struct {
	Name              string         `json:"name"`
	Profile           PersonaProfile `json:"profile"`
	Background        string         `json:"background"`
	PainPoints        []string       `json:"pain_points"`
	Needs             []string       `json:"needs"`
	UsagePattern      string         `json:"usage_pattern"`
	EvidenceReviewIDs []string       `json:"evidence_review_ids"`
	ClusterSource     int            `json:"cluster_source"`
}
