package types

// FeatureProposal is a schema-constrained candidate product feature
// produced by the ideation step. Instances are created from an external
// LLM response and validated locally before acceptance; see the ideation
// package for the validation contract.
type FeatureProposal struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ProblemAddressed string   `json:"problem_addressed"`
	TargetPersonas   []string `json:"target_personas"`
	ValueProposition string   `json:"value_proposition"`
	ReviewEvidence   []string `json:"review_evidence,omitempty"`
}
