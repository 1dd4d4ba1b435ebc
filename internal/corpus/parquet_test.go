package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/recdex/internal/domain"
)

type movieRow struct {
	MovieID  int64    `parquet:"movie_id"`
	Title    string   `parquet:"title"`
	Genres   []string `parquet:"genres,list"`
	Keywords string   `parquet:"keywords"`
	Year     int32    `parquet:"year"`
}

func writeParquet(t *testing.T, rows []movieRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	return path
}

func parquetColumns() Columns {
	return Columns{
		ID:    "movie_id",
		Title: "title",
		Tags:  []string{"genres", "keywords"},
		Keep:  []string{"year"},
	}
}

func TestLoadParquet_Valid(t *testing.T) {
	path := writeParquet(t, []movieRow{
		{MovieID: 1, Title: "Batman Begins", Genres: []string{"Action", "Crime"}, Keywords: "batman nolan", Year: 2005},
		{MovieID: 2, Title: "Clueless", Genres: []string{"Comedy"}, Keywords: "school", Year: 1995},
		{MovieID: 3, Title: "Untagged", Year: 2000},
	})

	items, err := LoadFile(path, parquetColumns())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.ID() != 1 || first.Title() != "Batman Begins" {
		t.Errorf("first item = %d %q", first.ID(), first.Title())
	}
	if first.TagText() != "action crime batman nolan" {
		t.Errorf("TagText = %q", first.TagText())
	}
	if year, _ := first.Field("year"); year != "2005" {
		t.Errorf("year = %q", year)
	}
	if items[2].TagText() != "" {
		t.Errorf("expected empty tag text, got %q", items[2].TagText())
	}
}

func TestLoadParquet_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []movieRow
		cols Columns
	}{
		{
			"missing column",
			[]movieRow{{MovieID: 1, Title: "A"}},
			Columns{ID: "movie_id", Title: "title", Tags: []string{"overview"}},
		},
		{
			"duplicate id",
			[]movieRow{{MovieID: 1, Title: "A"}, {MovieID: 1, Title: "B"}},
			parquetColumns(),
		},
		{
			"blank title",
			[]movieRow{{MovieID: 1, Title: "  "}},
			parquetColumns(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeParquet(t, tt.rows)
			_, err := LoadFile(path, tt.cols)
			if !errors.Is(err, domain.ErrInvalidCorpus) {
				t.Fatalf("expected ErrInvalidCorpus, got %v", err)
			}
		})
	}
}

func TestLoadParquet_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.parquet")
	if err := os.WriteFile(path, []byte(moviesCSV), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path, parquetColumns()); !errors.Is(err, domain.ErrInvalidCorpus) {
		t.Fatalf("expected ErrInvalidCorpus, got %v", err)
	}
}
