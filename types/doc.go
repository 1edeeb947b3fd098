// Package types provides core types used across the userboard pipeline.
// This package has ZERO dependencies on other userboard packages to avoid
// circular imports. All other packages should import types from here.
//
// The pipeline's data flow is:
//
//	[]Review -> cluster labels -> []Cluster -> []Persona
//	         -> []FeatureProposal -> []DiscussionTurn -> summary
//
// Entities are immutable once constructed: a Review never changes after
// ingestion, a Cluster never changes after analysis, and the discussion
// transcript is append-only.
package types
