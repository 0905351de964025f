package sheets

import (
	"strings"
	"time"

	"github.com/Veraticus/wealth-builder/internal/report"
	"github.com/shopspring/decimal"
)

// maxTitleLength is the longest tab title Google Sheets accepts.
const maxTitleLength = 100

// tableValues lays out a table as a header row followed by its data rows.
func tableValues(t report.Table) [][]any {
	values := make([][]any, 0, len(t.Rows)+1)

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	values = append(values, header)

	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		values = append(values, cells)
	}

	return values
}

// cellValue converts a table cell into something the Sheets API encodes the
// way USER_ENTERED input expects: numbers stay numeric, dates become ISO text.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return val.InexactFloat64()
	case time.Time:
		return val.Format("2006-01-02")
	case string, bool, int, int64, float64:
		return val
	default:
		return report.FormatCell(val)
	}
}

// tabTitle maps a table title to a valid tab title.
func tabTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Sheet"
	}
	return truncateRunes(title, maxTitleLength)
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// a1Range quotes a tab title for A1 notation.
func a1Range(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}
