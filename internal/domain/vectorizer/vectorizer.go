// Package vectorizer builds a bag-of-words vector space from a text corpus.
package vectorizer

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/vector"
)

// Vectorizer fits term-count models with a fixed, validated configuration.
type Vectorizer struct {
	cfg      Config
	analyzer *analyzer
}

// New validates cfg and creates a Vectorizer.
func New(cfg Config) (*Vectorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.StopWords = append([]string(nil), cfg.StopWords...)
	return &Vectorizer{cfg: cfg, analyzer: newAnalyzer(&cfg)}, nil
}

// Config returns a copy of the configuration.
func (v *Vectorizer) Config() Config {
	c := v.cfg
	c.StopWords = append([]string(nil), v.cfg.StopWords...)
	return c
}

// Model is a fitted vectorizer: the vocabulary, the document-term matrix of the
// training corpus and corpus-wide term counts. Immutable.
type Model struct {
	analyzer *analyzer
	vocab    Vocabulary
	matrix   Matrix
	totals   []int
}

type termStat struct {
	count     int
	docs      int
	firstSeen int
}

// Fit builds the vocabulary from documents and transforms them into a matrix.
func (v *Vectorizer) Fit(documents []string) (*Model, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("%w: corpus is empty", domain.ErrEmptyVocabulary)
	}

	docTerms := make([][]string, len(documents))
	stats := make(map[string]*termStat)
	var order []string

	for d, doc := range documents {
		terms := v.analyzer.terms(doc)
		docTerms[d] = terms

		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			st, ok := stats[t]
			if !ok {
				st = &termStat{firstSeen: len(order)}
				stats[t] = st
				order = append(order, t)
			}
			st.count++
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				st.docs++
			}
		}
	}

	n := float64(len(documents))
	kept := make([]string, 0, len(order))
	for _, t := range order {
		df := float64(stats[t].docs) / n
		if df < v.cfg.MinDF || df > v.cfg.MaxDF {
			continue
		}
		kept = append(kept, t)
	}

	// kept is in first-seen order, so a stable sort on count breaks ties by it
	sort.SliceStable(kept, func(i, j int) bool {
		return stats[kept[i]].count > stats[kept[j]].count
	})
	if v.cfg.MaxFeatures > 0 && len(kept) > v.cfg.MaxFeatures {
		kept = kept[:v.cfg.MaxFeatures]
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no term survived filtering (%d candidates, %d documents)",
			domain.ErrEmptyVocabulary, len(order), len(documents))
	}

	vocab := newVocabulary(kept)
	totals := make([]int, len(kept))
	for i, t := range kept {
		totals[i] = stats[t].count
	}

	rows := make([]vector.Sparse, len(documents))
	for d, terms := range docTerms {
		rows[d] = countTerms(vocab, terms)
	}

	return &Model{
		analyzer: v.analyzer,
		vocab:    vocab,
		matrix:   Matrix{rows: rows, cols: vocab.Len()},
		totals:   totals,
	}, nil
}

// FitTransform validates cfg, fits it on documents and returns the vocabulary
// and document-term matrix.
func FitTransform(documents []string, cfg Config) (Vocabulary, Matrix, error) {
	v, err := New(cfg)
	if err != nil {
		return Vocabulary{}, Matrix{}, err
	}
	m, err := v.Fit(documents)
	if err != nil {
		return Vocabulary{}, Matrix{}, err
	}
	return m.Vocabulary(), m.Matrix(), nil
}

// Vocabulary returns the fitted vocabulary.
func (m *Model) Vocabulary() Vocabulary { return m.vocab }

// Matrix returns the document-term matrix of the training corpus.
func (m *Model) Matrix() Matrix { return m.matrix }

// Transform vectorizes a new document against the fixed vocabulary.
// Terms outside the vocabulary are ignored.
func (m *Model) Transform(doc string) vector.Sparse {
	return countTerms(m.vocab, m.analyzer.terms(doc))
}

// TermFrequencies returns corpus-wide counts for every vocabulary term,
// in vocabulary order.
func (m *Model) TermFrequencies() []TermCount {
	out := make([]TermCount, len(m.totals))
	for i, c := range m.totals {
		out[i] = TermCount{Term: m.vocab.Term(i), Count: c}
	}
	return out
}

func countTerms(vocab Vocabulary, terms []string) vector.Sparse {
	counts := make(map[int]float64)
	for _, t := range terms {
		if idx, ok := vocab.Index(t); ok {
			counts[idx]++
		}
	}
	return vector.FromCounts(vocab.Len(), counts)
}
