// Package ingest loads a raw review corpus and derives the per-review
// fields the rest of the pipeline depends on: cleaned text and sentiment.
//
// Cleaning is idempotent: clean(clean(x)) == clean(x). Sentiment is a
// lexicon-based scorer producing a compound score in [-1, 1] plus
// positive/negative/neutral proportions; it deliberately involves no
// external calls so ingestion is fast and deterministic.
package ingest
