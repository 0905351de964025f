package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/wealth-builder/internal/cli"
	"github.com/shopspring/decimal"
)

// Format selects a renderer.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, csv or json)", s)
	}
}

// Write renders the tables to w in the given format. JSON output is a single
// document: an array of rows for one table, an array of {title, rows} for more.
func Write(w io.Writer, format Format, tables ...Table) error {
	switch format {
	case FormatCSV:
		for i, t := range tables {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := WriteCSV(w, t); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		if len(tables) == 1 {
			return WriteJSON(w, tables[0])
		}
		doc := make([]map[string]any, 0, len(tables))
		for _, t := range tables {
			doc = append(doc, map[string]any{"title": t.Title, "rows": jsonRows(t)})
		}
		return encodeJSON(w, doc)
	default:
		for i, t := range tables {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := WriteText(w, t); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteText renders a table with a styled title and aligned columns.
func WriteText(w io.Writer, t Table) error {
	if _, err := fmt.Fprintln(w, cli.FormatTitle(t.Title)); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}

	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, cli.SubtleStyle.Render("(no rows)"))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(t.Columns))
	separators := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = cli.TableHeaderStyle.Render(c)
		separators[i] = strings.Repeat("─", len(c))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, row := range t.Strings() {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return tw.Flush()
}

// WriteCSV writes the header row followed by every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(t.Strings()); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteJSON writes the rows as an array of objects keyed by column name.
func WriteJSON(w io.Writer, t Table) error {
	return encodeJSON(w, jsonRows(t))
}

func jsonRows(t Table) []map[string]any {
	rows := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				obj[c] = jsonValue(row[i])
			}
		}
		rows = append(rows, obj)
	}
	return rows
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return json.Number(val.String())
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return v
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
