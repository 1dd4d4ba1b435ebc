package recdex

import (
	"fmt"

	"github.com/kailas-cloud/recdex/internal/corpus"
	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
)

// Item is a corpus entry. Tags is the free text the vectors are built from.
type Item struct {
	ID     int64
	Title  string
	Tags   string
	Fields map[string]string
}

// Recommendation is a ranked item with its cosine similarity to the query.
type Recommendation struct {
	Item  Item
	Score float64
}

// Term is one row of the corpus token-frequency table.
type Term struct {
	Term  string
	Count int
}

// Columns maps CSV header names to item attributes. See ReadCSV.
type Columns struct {
	ID    string // empty: ids from the 1-based row number
	Title string
	Tags  []string
	Keep  []string
}

func (c Columns) toDomain() corpus.Columns {
	return corpus.Columns{ID: c.ID, Title: c.Title, Tags: c.Tags, Keep: c.Keep}
}

func itemFromDomain(it item.Item) Item {
	return Item{ID: it.ID(), Title: it.Title(), Tags: it.TagText(), Fields: it.Fields()}
}

func itemToDomain(it Item) (item.Item, error) {
	d, err := item.New(it.ID, it.Title, it.Tags, it.Fields)
	if err != nil {
		return item.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidCorpus, err)
	}
	return d, nil
}

func recommendationsFromDomain(recs []domrec.Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{Item: itemFromDomain(r.Item), Score: r.Score}
	}
	return out
}
