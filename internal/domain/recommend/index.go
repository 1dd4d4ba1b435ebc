// Package recommend ranks corpus items by cosine similarity of their
// bag-of-words vectors.
package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/item"
	"github.com/kailas-cloud/recdex/internal/domain/similarity"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
)

// DefaultK is the number of recommendations returned when no k is given.
const DefaultK = 5

// minParallelRows is the smallest corpus worth splitting across workers.
const minParallelRows = 2048

// Recommendation is a ranked item with its cosine similarity to the query.
type Recommendation struct {
	Item  item.Item
	Score float64
}

// Index is a fitted, immutable recommender: items, their vectors and lookups.
// Safe for concurrent use.
type Index struct {
	items       []item.Item
	model       *vectorizer.Model
	norms       []float64
	byID        map[int64]int
	byTitle     map[string]int
	workers     int
	fingerprint string
}

// Option configures an Index.
type Option func(*Index)

// WithWorkers scans rows with n goroutines. n <= 0 uses GOMAXPROCS.
// Small corpora are always scanned sequentially.
func WithWorkers(n int) Option {
	return func(ix *Index) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		ix.workers = n
	}
}

// Build vectorizes the items' tag text and creates an Index.
// Item ids must be unique; titles may repeat.
func Build(items []item.Item, cfg vectorizer.Config, opts ...Option) (*Index, error) {
	vec, err := vectorizer.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}

	docs := make([]string, len(items))
	byID := make(map[int64]int, len(items))
	byTitle := make(map[string]int, len(items))
	for i := range items {
		id := items[i].ID()
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %d", domain.ErrInvalidCorpus, id)
		}
		byID[id] = i
		if _, seen := byTitle[items[i].Title()]; !seen {
			byTitle[items[i].Title()] = i
		}
		docs[i] = items[i].TagText()
	}

	model, err := vec.Fit(docs)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	matrix := model.Matrix()
	norms := make([]float64, matrix.Rows())
	for i := range norms {
		norms[i] = matrix.Sparse(i).Norm()
	}

	ix := &Index{
		items:       append([]item.Item(nil), items...),
		model:       model,
		norms:       norms,
		byID:        byID,
		byTitle:     byTitle,
		workers:     1,
		fingerprint: fingerprint(items, vec.Config()),
	}
	for _, o := range opts {
		o(ix)
	}
	return ix, nil
}

// Len returns the number of items.
func (ix *Index) Len() int { return len(ix.items) }

// Items returns a copy of the items in corpus order.
func (ix *Index) Items() []item.Item { return append([]item.Item(nil), ix.items...) }

// Vocabulary returns the fitted vocabulary.
func (ix *Index) Vocabulary() vectorizer.Vocabulary { return ix.model.Vocabulary() }

// Matrix returns the document-term matrix.
func (ix *Index) Matrix() vectorizer.Matrix { return ix.model.Matrix() }

// TermFrequencies returns the corpus token-frequency table.
func (ix *Index) TermFrequencies() []vectorizer.TermCount { return ix.model.TermFrequencies() }

// Fingerprint identifies the corpus and configuration the index was built from.
func (ix *Index) Fingerprint() string { return ix.fingerprint }

// Item returns the item with the given id.
func (ix *Index) Item(id int64) (item.Item, error) {
	row, ok := ix.byID[id]
	if !ok {
		return item.Item{}, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, id)
	}
	return ix.items[row], nil
}

// Lookup resolves a title to an item. When several items share the title,
// the first one in corpus order is returned.
func (ix *Index) Lookup(title string) (item.Item, error) {
	row, ok := ix.byTitle[title]
	if !ok {
		return item.Item{}, domain.NewUnknownTitle(title)
	}
	return ix.items[row], nil
}

// Recommend returns up to k items most similar to the item titled title.
// Title lookup follows Lookup's first-match rule.
func (ix *Index) Recommend(ctx context.Context, title string, k int) ([]Recommendation, error) {
	row, ok := ix.byTitle[title]
	if !ok {
		return nil, domain.NewUnknownTitle(title)
	}
	return ix.recommendRow(ctx, row, k)
}

// RecommendByID returns up to k items most similar to the item with the given id.
// The query item itself and incomparable items (zero vectors) are never returned.
// Results are ordered by descending similarity, ties by corpus order.
func (ix *Index) RecommendByID(ctx context.Context, id int64, k int) ([]Recommendation, error) {
	row, ok := ix.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, id)
	}
	return ix.recommendRow(ctx, row, k)
}

func (ix *Index) recommendRow(ctx context.Context, row, k int) ([]Recommendation, error) {
	if k <= 0 {
		return []Recommendation{}, nil
	}
	// a zero query vector is incomparable with every row
	if ix.norms[row] == 0 {
		return []Recommendation{}, nil
	}

	best, err := ix.scan(ctx, row, k)
	if err != nil {
		return nil, err
	}

	ranked := best.sorted()
	out := make([]Recommendation, len(ranked))
	for i, c := range ranked {
		out[i] = Recommendation{Item: ix.items[c.row], Score: c.score}
	}
	return out, nil
}

// Score returns the cosine similarity between two items (NaN when incomparable).
func (ix *Index) Score(idA, idB int64) (float64, error) {
	a, ok := ix.byID[idA]
	if !ok {
		return math.NaN(), fmt.Errorf("%w: id %d", domain.ErrItemNotFound, idA)
	}
	b, ok := ix.byID[idB]
	if !ok {
		return math.NaN(), fmt.Errorf("%w: id %d", domain.ErrItemNotFound, idB)
	}
	return ix.score(a, b), nil
}

func (ix *Index) score(a, b int) float64 {
	m := ix.model.Matrix()
	return similarity.FromDot(m.Sparse(a).Dot(m.Sparse(b)), ix.norms[a], ix.norms[b])
}

// scan scores the query row against every other row.
func (ix *Index) scan(ctx context.Context, query, k int) (*topK, error) {
	n := len(ix.items)
	workers := ix.workers
	if n < minParallelRows || workers <= 1 {
		best := newTopK(k)
		if err := ix.scanRange(ctx, query, 0, n, best); err != nil {
			return nil, err
		}
		return best, nil
	}

	chunk := (n + workers - 1) / workers
	partial := make([]*topK, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, n)
		partial[w] = newTopK(k)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			return ix.scanRange(gctx, query, lo, hi, partial[w])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := newTopK(k)
	for _, p := range partial {
		best.merge(p)
	}
	return best, nil
}

func (ix *Index) scanRange(ctx context.Context, query, lo, hi int, best *topK) error {
	for r := lo; r < hi; r++ {
		if r%minParallelRows == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
		}
		if r == query {
			continue
		}
		s := ix.score(query, r)
		if !similarity.Comparable(s) {
			continue
		}
		best.offer(candidate{row: r, score: s})
	}
	return nil
}

// fingerprint hashes the configuration and every item's id, title and tag text.
func fingerprint(items []item.Item, cfg vectorizer.Config) string {
	h := sha256.New()
	fmt.Fprintf(h, "%g|%g|%d|%d|%d|%q|%t|%q\n",
		cfg.MinDF, cfg.MaxDF, cfg.MaxFeatures,
		cfg.NGramRange.Min, cfg.NGramRange.Max,
		cfg.StopWords, cfg.Lowercase, cfg.TokenPattern)

	var buf [8]byte
	for i := range items {
		binary.LittleEndian.PutUint64(buf[:], uint64(items[i].ID()))
		h.Write(buf[:])
		h.Write([]byte(strconv.Quote(items[i].Title())))
		h.Write([]byte(strconv.Quote(items[i].TagText())))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
