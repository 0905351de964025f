package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/wealth-builder/internal/report"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// TableWriter publishes report tables somewhere outside the terminal.
type TableWriter interface {
	WriteTables(ctx context.Context, tables []report.Table) (string, error)
}

// Writer writes report tables to a Google Spreadsheet, one tab per table.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets table writer.
func NewWriter(ctx context.Context, config Config) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return newWriterWithService(srv, config), nil
}

func newWriterWithService(srv *sheets.Service, config Config) *Writer {
	return &Writer{
		service: srv,
		config:  config,
		logger:  slog.Default().With("component", "sheets"),
	}
}

// WriteTables writes each table to the tab named after its title, creating
// missing tabs and clearing existing ones. It returns the spreadsheet ID.
func (w *Writer) WriteTables(ctx context.Context, tables []report.Table) (string, error) {
	if len(tables) == 0 {
		return "", fmt.Errorf("no tables to write")
	}

	titles := uniqueTitles(tables)
	w.logger.Info("Starting spreadsheet export", "tables", len(tables))

	spreadsheetID, sheetIDs, err := w.prepareSpreadsheet(ctx, titles)
	if err != nil {
		return "", err
	}

	for i, table := range tables {
		title := titles[i]
		if _, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, a1Range(title, "A:ZZ"),
			&sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("failed to clear tab %q: %w", title, err)
		}

		if err := w.writeData(ctx, spreadsheetID, title, tableValues(table)); err != nil {
			return "", err
		}
	}

	if w.config.EnableFormatting {
		if err := w.applyFormatting(ctx, spreadsheetID, titles, sheetIDs); err != nil {
			w.logger.Warn("Failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("Spreadsheet export completed",
		"spreadsheet_id", spreadsheetID,
		"tabs", len(titles))

	return spreadsheetID, nil
}

// prepareSpreadsheet opens the configured spreadsheet, or creates one, and
// makes sure a tab exists for every title. It returns tab IDs by title.
func (w *Writer) prepareSpreadsheet(ctx context.Context, titles []string) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		return w.createSpreadsheet(ctx, titles)
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	sheetIDs := make(map[string]int64, len(titles))
	for _, s := range existing.Sheets {
		sheetIDs[s.Properties.Title] = s.Properties.SheetId
	}

	var requests []*sheets.Request
	for _, title := range titles {
		if _, ok := sheetIDs[title]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		})
	}

	if len(requests) > 0 {
		resp, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID,
			&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("failed to add tabs: %w", err)
		}
		for _, reply := range resp.Replies {
			if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
				sheetIDs[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
			}
		}
		w.logger.Debug("Added tabs", "count", len(requests))
	}

	return w.config.SpreadsheetID, sheetIDs, nil
}

func (w *Writer) createSpreadsheet(ctx context.Context, titles []string) (string, map[string]int64, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, title := range titles {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: title},
		})
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("Created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	sheetIDs := make(map[string]int64, len(created.Sheets))
	for _, s := range created.Sheets {
		sheetIDs[s.Properties.Title] = s.Properties.SheetId
	}

	return created.SpreadsheetId, sheetIDs, nil
}

// writeData writes values to a tab in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, title string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, a1Range(title, fmt.Sprintf("A%d", i+1)),
			&sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write tab %q at row %d: %w", title, i+1, err)
		}

		w.logger.Debug("Wrote batch", "tab", title, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header row of every tab and sizes
// its columns to fit.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, titles []string, sheetIDs map[string]int64) error {
	requests := make([]*sheets.Request, 0, len(titles)*3)
	for _, title := range titles {
		id, ok := sheetIDs[title]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       id,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: id,
						GridProperties: &sheets.GridProperties{
							FrozenRowCount: 1,
						},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:   id,
						Dimension: "COLUMNS",
					},
				},
			},
		)
	}

	if len(requests) == 0 {
		return nil
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}

// uniqueTitles returns one distinct tab title per table. Repeats get a
// " (n)" suffix, with the base shortened so the suffix always fits.
func uniqueTitles(tables []report.Table) []string {
	used := make(map[string]bool, len(tables))
	titles := make([]string, len(tables))
	for i, t := range tables {
		base := tabTitle(t.Title)
		title := base
		for n := 2; used[title]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			title = truncateRunes(base, maxTitleLength-len(suffix)) + suffix
		}
		used[title] = true
		titles[i] = title
	}
	return titles
}

var _ TableWriter = (*Writer)(nil)
