package item

import (
	"fmt"
	"strings"
)

// MaxTitleLength is the maximum item title length in bytes.
const MaxTitleLength = 1024

// Item is a corpus entry (immutable value object).
type Item struct {
	id      int64
	title   string
	tagText string
	fields  map[string]string
}

// New validates and creates an Item.
// Title: non-blank, max 1KB. Tag text may be empty (the item then has a zero vector).
func New(id int64, title, tagText string, fields map[string]string) (Item, error) {
	if strings.TrimSpace(title) == "" {
		return Item{}, fmt.Errorf("item %d: title is required", id)
	}
	if len(title) > MaxTitleLength {
		return Item{}, fmt.Errorf("item %d: title too long (max %d bytes)", id, MaxTitleLength)
	}

	return Item{
		id:      id,
		title:   title,
		tagText: tagText,
		fields:  cloneStringMap(fields),
	}, nil
}

// Reconstruct creates an Item without validation (cache hydration, tests).
func Reconstruct(id int64, title, tagText string, fields map[string]string) Item {
	return Item{id: id, title: title, tagText: tagText, fields: fields}
}

// ID returns the item identifier.
func (i *Item) ID() int64 { return i.id }

// Title returns the display title used for lookups.
func (i *Item) Title() string { return i.title }

// TagText returns the normalized text the item is vectorized from.
func (i *Item) TagText() string { return i.tagText }

// Fields returns a copy of the pass-through descriptive fields.
func (i *Item) Fields() map[string]string { return cloneStringMap(i.fields) }

// Field returns a single pass-through field.
func (i *Item) Field(name string) (string, bool) {
	v, ok := i.fields[name]
	return v, ok
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
