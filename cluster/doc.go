// Package cluster partitions a cleaned review corpus into topical
// clusters and turns the raw label assignments into analyzed Cluster
// entities.
//
// The engine vectorizes texts with TF-IDF over unigrams and bigrams and
// selects the cluster count automatically: every candidate k in a bounded
// range is tried with a fixed seed and scored with the silhouette
// coefficient; degenerate candidates are skipped, never selected. The
// engine's output always partitions the input - size-based filtering
// happens in the Analyzer, not here.
//
// The analyzer reuses the corpus-level vectorizer for per-cluster keyword
// extraction (transform, never refit) so keyword scores stay comparable
// across clusters.
package cluster
