package corpus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/item"
)

// parquetBatch is the number of rows read per call.
const parquetBatch = 1000

// LoadParquet reads a Parquet corpus. Columns are matched by top-level field
// name. Values of repeated (list) columns are joined with single spaces,
// so a genres list behaves like a whitespace-separated CSV cell.
func LoadParquet(r io.ReaderAt, size int64, cols Columns) ([]item.Item, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open parquet: %w", domain.ErrInvalidCorpus, err)
	}

	header, leafTo := parquetHeader(pf.Schema())
	pos, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}

	b := newBuilder(pos)
	row := 0
	buf := make([]parquet.Row, parquetBatch)
	for _, rg := range pf.RowGroups() {
		rows := parquet.NewRowGroupReader(rg)
		for {
			n, readErr := rows.ReadRows(buf)
			for i := range n {
				row++
				if err := b.add(parquetRecord(buf[i], leafTo, len(header)), "row", row); err != nil {
					return nil, err
				}
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("%w: read rows: %w", domain.ErrInvalidCorpus, readErr)
			}
		}
	}
	return b.items, nil
}

// parquetHeader returns the top-level field names in schema order and a
// mapping from leaf column index to header position.
func parquetHeader(schema *parquet.Schema) ([]string, []int) {
	leaves := schema.Columns()
	leafTo := make([]int, len(leaves))
	var header []string
	index := make(map[string]int)
	for i, path := range leaves {
		leafTo[i] = -1
		if len(path) == 0 {
			continue
		}
		h, ok := index[path[0]]
		if !ok {
			h = len(header)
			index[path[0]] = h
			header = append(header, path[0])
		}
		leafTo[i] = h
	}
	return header, leafTo
}

// parquetRecord flattens a row into one string per header column.
func parquetRecord(row parquet.Row, leafTo []int, width int) []string {
	parts := make([][]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(leafTo) || leafTo[col] < 0 || v.IsNull() {
			continue
		}
		h := leafTo[col]
		parts[h] = append(parts[h], v.String())
	}

	record := make([]string, width)
	for i, p := range parts {
		record[i] = strings.Join(p, " ")
	}
	return record
}
