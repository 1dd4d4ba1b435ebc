// Package corpus loads items from CSV and Parquet files and normalizes their tag text.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/item"
)

// Columns maps CSV header names to item attributes.
type Columns struct {
	// ID is the integer id column. Empty assigns ids from the 1-based row number.
	ID    string
	Title string
	// Tags are concatenated, in order, into the item's tag text.
	Tags []string
	// Keep are copied verbatim into the item's fields.
	Keep []string
}

// Validate checks that the mandatory columns are named.
func (c *Columns) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title column is required", domain.ErrInvalidCorpus)
	}
	if len(c.Tags) == 0 {
		return fmt.Errorf("%w: at least one tag column is required", domain.ErrInvalidCorpus)
	}
	return nil
}

// LoadFile reads a corpus from path. Files ending in .parquet are read as
// Parquet; anything else as CSV with a header row.
func LoadFile(path string, cols Columns) ([]item.Item, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var items []item.Item
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		stat, statErr := f.Stat()
		if statErr != nil {
			return nil, fmt.Errorf("stat corpus %s: %w", path, statErr)
		}
		items, err = LoadParquet(f, stat.Size(), cols)
	} else {
		items, err = LoadCSV(f, cols)
	}
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return items, nil
}

// LoadCSV reads a CSV corpus with a header row.
func LoadCSV(r io.Reader, cols Columns) ([]item.Item, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", domain.ErrInvalidCorpus)
		}
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrInvalidCorpus, err)
	}
	pos, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}

	b := newBuilder(pos)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrInvalidCorpus, line, err)
		}
		if err := b.add(record, "line", line); err != nil {
			return nil, err
		}
	}
	return b.items, nil
}

// builder turns records into items and rejects duplicate ids.
type builder struct {
	pos   *positions
	seen  map[int64]int
	items []item.Item
}

func newBuilder(pos *positions) *builder {
	return &builder{pos: pos, seen: make(map[int64]int)}
}

// add builds one item; unit and n locate the record in error messages.
func (b *builder) add(record []string, unit string, n int) error {
	it, err := b.pos.build(record, int64(len(b.items)+1))
	if err != nil {
		return fmt.Errorf("%w: %s %d: %w", domain.ErrInvalidCorpus, unit, n, err)
	}
	if prev, dup := b.seen[it.ID()]; dup {
		return fmt.Errorf("%w: %s %d: duplicate id %d (first on %s %d)",
			domain.ErrInvalidCorpus, unit, n, it.ID(), unit, prev)
	}
	b.seen[it.ID()] = n
	b.items = append(b.items, it)
	return nil
}

// positions holds resolved column indexes.
type positions struct {
	id    int // -1 when ids are generated
	title int
	tags  []int
	keep  map[string]int
}

func resolveColumns(header []string, cols Columns) (*positions, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	find := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("%w: column %q not found in header", domain.ErrInvalidCorpus, name)
		}
		return i, nil
	}

	p := &positions{id: -1, keep: make(map[string]int, len(cols.Keep))}
	var err error
	if cols.ID != "" {
		if p.id, err = find(cols.ID); err != nil {
			return nil, err
		}
	}
	if p.title, err = find(cols.Title); err != nil {
		return nil, err
	}
	for _, name := range cols.Tags {
		i, err := find(name)
		if err != nil {
			return nil, err
		}
		p.tags = append(p.tags, i)
	}
	for _, name := range cols.Keep {
		i, err := find(name)
		if err != nil {
			return nil, err
		}
		p.keep[name] = i
	}
	return p, nil
}

func (p *positions) build(record []string, ordinal int64) (item.Item, error) {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	id := ordinal
	if p.id >= 0 {
		raw := strings.TrimSpace(field(p.id))
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return item.Item{}, fmt.Errorf("invalid id %q", raw)
		}
		id = parsed
	}

	parts := make([]string, 0, len(p.tags))
	for _, i := range p.tags {
		parts = append(parts, field(i))
	}

	var fields map[string]string
	if len(p.keep) > 0 {
		fields = make(map[string]string, len(p.keep))
		for name, i := range p.keep {
			fields[name] = field(i)
		}
	}

	it, err := item.New(id, strings.TrimSpace(field(p.title)), TagText(parts...), fields)
	if err != nil {
		return item.Item{}, fmt.Errorf("build item: %w", err)
	}
	return it, nil
}

// TagText lowercases and joins descriptive fields into a single
// whitespace-separated string.
func TagText(fields ...string) string {
	var words []string
	for _, f := range fields {
		words = append(words, strings.Fields(strings.ToLower(f))...)
	}
	return strings.Join(words, " ")
}
