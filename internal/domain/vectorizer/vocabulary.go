package vectorizer

import "github.com/kailas-cloud/recdex/internal/domain/vector"

// Vocabulary is the ordered, immutable set of terms that index vector dimensions.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func newVocabulary(terms []string) Vocabulary {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return Vocabulary{terms: terms, index: index}
}

// Len returns the number of terms (the vector dimension).
func (v Vocabulary) Len() int { return len(v.terms) }

// Terms returns a copy of the terms in dimension order.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Term returns the term at dimension i.
func (v Vocabulary) Term(i int) string { return v.terms[i] }

// Index returns the dimension of a term.
func (v Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Matrix is the document-term count matrix: one row per document, one column per
// vocabulary term. Rows are stored sparse.
type Matrix struct {
	rows []vector.Sparse
	cols int
}

// Rows returns the number of documents.
func (m Matrix) Rows() int { return len(m.rows) }

// Cols returns the number of vocabulary terms.
func (m Matrix) Cols() int { return m.cols }

// Row returns a dense copy of row i.
func (m Matrix) Row(i int) []float64 { return m.rows[i].Dense() }

// Sparse returns row i as a sparse vector.
func (m Matrix) Sparse(i int) vector.Sparse { return m.rows[i] }

// Dense materializes the whole matrix.
func (m Matrix) Dense() [][]float64 {
	out := make([][]float64, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Dense()
	}
	return out
}

// TermCount is a row of the diagnostic token-frequency table.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
