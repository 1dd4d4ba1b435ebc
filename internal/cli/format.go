package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
)

// barWidth is the widest frequency bar in the terms table.
const barWidth = 30

var headerStyle = lipgloss.NewStyle().Bold(true)

type jsonQuery struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Fields map[string]string `json:"fields,omitempty"`
}

type jsonItem struct {
	jsonQuery
	Score float64 `json:"score"`
}

type jsonRecommendations struct {
	Query jsonQuery  `json:"query"`
	K     int        `json:"k"`
	Items []jsonItem `json:"items"`
}

func printRecommendations(w io.Writer, format string, res recommenduc.Result) error {
	if format == outputJSON {
		out := jsonRecommendations{
			Query: jsonQuery{ID: res.Query.ID(), Title: res.Query.Title(), Fields: res.Query.Fields()},
			K:     res.K,
			Items: make([]jsonItem, len(res.Items)),
		}
		for i, r := range res.Items {
			out.Items[i] = jsonItem{
				jsonQuery: jsonQuery{ID: r.Item.ID(), Title: r.Item.Title(), Fields: r.Item.Fields()},
				Score:     r.Score,
			}
		}
		return writeJSON(w, out)
	}

	if _, err := fmt.Fprintf(w, "Recommendations for %q (id %d)\n",
		res.Query.Title(), res.Query.ID()); err != nil {
		return err
	}
	if len(res.Items) == 0 {
		_, err := fmt.Fprintln(w, "No comparable items.")
		return err
	}

	rows := make([][]string, len(res.Items))
	for i, r := range res.Items {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.Item.ID(), 10),
			r.Item.Title(),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(headerRow).
		Headers("#", "ID", "TITLE", "SCORE").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printTerms(w io.Writer, format string, terms []vectorizer.TermCount) error {
	if format == outputJSON {
		return writeJSON(w, terms)
	}

	maxCount := 0
	for _, t := range terms {
		maxCount = max(maxCount, t.Count)
	}

	rows := make([][]string, len(terms))
	for i, t := range terms {
		rows[i] = []string{t.Term, strconv.Itoa(t.Count), bar(t.Count, maxCount)}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(headerRow).
		Headers("TERM", "COUNT", "").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func headerRow(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return lipgloss.NewStyle()
}

// bar scales count against maxCount; any nonzero count gets at least one cell.
func bar(count, maxCount int) string {
	if maxCount == 0 || count == 0 {
		return ""
	}
	n := max(1, count*barWidth/maxCount)
	return strings.Repeat("█", n)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
