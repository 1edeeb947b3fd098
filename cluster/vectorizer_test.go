package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizer_FitTransform(t *testing.T) {
	docs := []string{
		"sync fails on my tablet",
		"sync fails every night",
		"sync fails after update",
		"love the new design",
		"love the new widgets",
		"love the new colors",
	}
	vec := NewVectorizer(VectorizerConfig{MaxFeatures: 100, MinDF: 2, MaxDFRatio: 0.9})
	X, err := vec.FitTransform(docs)
	require.NoError(t, err)
	require.Len(t, X, len(docs))

	vocab := vec.Vocabulary()
	assert.Contains(t, vocab, "sync")
	assert.Contains(t, vocab, "fails")
	assert.Contains(t, vocab, "love")
	// Bigrams survive the document-frequency floor too.
	assert.Contains(t, vocab, "sync fails")
	// df=1 terms are dropped by MinDF=2.
	assert.NotContains(t, vocab, "tablet")
	// Stopwords never enter the vocabulary.
	assert.NotContains(t, vocab, "the")
	assert.NotContains(t, vocab, "my")

	// Rows are L2-normalized.
	for i, row := range X {
		var norm float64
		for _, v := range row {
			norm += v * v
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9, "row %d", i)
	}
}

func TestVectorizer_MaxDFCeiling(t *testing.T) {
	docs := []string{
		"crash report today", "crash report yesterday", "crash again later",
		"crash once more", "crash forever now", "crash crash crash",
	}
	// "crash" appears in 6/6 documents; with a 0.85 ceiling it must go.
	vec := NewVectorizer(VectorizerConfig{MaxFeatures: 100, MinDF: 2, MaxDFRatio: 0.85})
	require.NoError(t, vec.Fit(docs))
	assert.NotContains(t, vec.Vocabulary(), "crash")
	assert.Contains(t, vec.Vocabulary(), "report")
}

func TestVectorizer_VocabularyCap(t *testing.T) {
	docs := []string{
		"alpha beta gamma delta", "alpha beta gamma delta",
		"alpha beta epsilon zeta", "alpha beta epsilon zeta",
	}
	vec := NewVectorizer(VectorizerConfig{MaxFeatures: 2, MinDF: 2, MaxDFRatio: 1.0})
	require.NoError(t, vec.Fit(docs))
	assert.Len(t, vec.Vocabulary(), 2)
	// The most frequent terms win the cap.
	assert.Contains(t, vec.Vocabulary(), "alpha")
	assert.Contains(t, vec.Vocabulary(), "beta")
}

func TestVectorizer_EmptyVocabulary(t *testing.T) {
	vec := NewVectorizer(VectorizerConfig{MaxFeatures: 100, MinDF: 3, MaxDFRatio: 0.85})
	err := vec.Fit([]string{"unique words here", "nothing repeats twice", "all terms rare"})
	require.Error(t, err)
}

func TestVectorizer_TransformSubsetMatchesCorpusRows(t *testing.T) {
	docs := []string{
		"sync fails on tablet", "sync fails on tablet", "sync fails on tablet",
		"love new design", "love new design", "love new design",
	}
	vec := NewVectorizer(VectorizerConfig{MaxFeatures: 100, MinDF: 2, MaxDFRatio: 1.0})
	X, err := vec.FitTransform(docs)
	require.NoError(t, err)

	// Transform on a subset reuses the corpus vocabulary and IDF, so the
	// rows are identical to the corresponding corpus rows.
	sub := vec.Transform(docs[:2])
	assert.Equal(t, X[0], sub[0])
	assert.Equal(t, X[1], sub[1])
}
