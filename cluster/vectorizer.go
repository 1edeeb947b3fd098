package cluster

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// VectorizerConfig controls TF-IDF vectorization.
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary size; most frequent terms win.
	MaxFeatures int
	// MinDF drops terms appearing in fewer than this many documents.
	MinDF int
	// MaxDFRatio drops terms appearing in more than this share of documents.
	MaxDFRatio float64
	// Stopwords is the domain-specific list layered on top of the general
	// English stopword list.
	Stopwords []string
}

// DefaultVectorizerConfig returns the defaults used by the pipeline.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 1000,
		MinDF:       3,
		MaxDFRatio:  0.85,
		Stopwords:   DefaultDomainStopwords,
	}
}

// Vectorizer converts texts into L2-normalized TF-IDF rows over unigrams
// and bigrams. Fit builds the vocabulary once; Transform can then be
// applied to any subset of documents, which is what the analyzer relies
// on for cross-cluster-comparable keyword scores.
type Vectorizer struct {
	cfg   VectorizerConfig
	stop  map[string]bool
	vocab []string
	index map[string]int
	idf   []float64
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = 1000
	}
	if cfg.MinDF <= 0 {
		cfg.MinDF = 1
	}
	if cfg.MaxDFRatio <= 0 || cfg.MaxDFRatio > 1 {
		cfg.MaxDFRatio = 1
	}
	stop := make(map[string]bool, len(englishStopwords)+len(cfg.Stopwords))
	for _, w := range englishStopwords {
		stop[w] = true
	}
	for _, w := range cfg.Stopwords {
		stop[strings.ToLower(w)] = true
	}
	return &Vectorizer{cfg: cfg, stop: stop}
}

// tokenize splits a cleaned text into lowercase unigram tokens, dropping
// stopwords and single-character fragments.
func (v *Vectorizer) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if len(f) < 2 || v.stop[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// terms expands tokens into the unigram+bigram term sequence.
func (v *Vectorizer) terms(text string) []string {
	tokens := v.tokenize(text)
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// Fit builds the vocabulary and IDF weights from the corpus.
func (v *Vectorizer) Fit(docs []string) error {
	n := len(docs)
	if n == 0 {
		return fmt.Errorf("cannot fit vectorizer on empty corpus")
	}

	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range v.terms(doc) {
			tf[term]++
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	maxDF := int(v.cfg.MaxDFRatio * float64(n))
	if maxDF < 1 {
		maxDF = 1
	}
	candidates := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.cfg.MinDF || count > maxDF {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("vocabulary empty after document-frequency filtering (corpus size %d)", n)
	}

	// Most frequent terms win the vocabulary cap; ties break alphabetically
	// so fitting is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if tf[candidates[i]] != tf[candidates[j]] {
			return tf[candidates[i]] > tf[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > v.cfg.MaxFeatures {
		candidates = candidates[:v.cfg.MaxFeatures]
	}

	v.vocab = candidates
	v.index = make(map[string]int, len(candidates))
	v.idf = make([]float64, len(candidates))
	for i, term := range candidates {
		v.index[term] = i
		// Smoothed IDF, sklearn-style: ln((1+n)/(1+df)) + 1.
		v.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return nil
}

// Transform maps documents into the fitted TF-IDF space. Rows are
// L2-normalized; documents with no vocabulary terms map to zero rows.
func (v *Vectorizer) Transform(docs []string) [][]float64 {
	rows := make([][]float64, len(docs))
	for d, doc := range docs {
		row := make([]float64, len(v.vocab))
		for _, term := range v.terms(doc) {
			if i, ok := v.index[term]; ok {
				row[i] += v.idf[i]
			}
		}
		var norm float64
		for _, x := range row {
			norm += x * x
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range row {
				row[i] /= norm
			}
		}
		rows[d] = row
	}
	return rows
}

// FitTransform fits on the corpus and returns its TF-IDF rows.
func (v *Vectorizer) FitTransform(docs []string) ([][]float64, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs), nil
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	return v.vocab
}

// IsStopword reports whether a term is on the combined stopword list.
func (v *Vectorizer) IsStopword(term string) bool {
	return v.stop[strings.ToLower(term)]
}
