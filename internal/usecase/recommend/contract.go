package recommend

import (
	"context"

	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
)

// Index resolves items and exposes corpus statistics.
type Index interface {
	Lookup(title string) (item.Item, error)
	Item(id int64) (item.Item, error)
	TermFrequencies() []vectorizer.TermCount
	Len() int
}

// Recommender ranks items similar to a query item. Either the index itself
// or a caching decorator around it.
type Recommender interface {
	RecommendByID(ctx context.Context, id int64, k int) ([]domrec.Recommendation, error)
}
