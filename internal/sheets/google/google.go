package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	ports "smarttracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetCacheTTL = 10 * time.Minute

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	// sheet title -> numeric sheet id, refreshed after cacheValidDuration
	mu                 sync.Mutex
	sheetIDs           map[string]int64
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// Ensure interface conformance
var _ ports.EntryMirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		cacheValidDuration: defaultSheetCacheTTL,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertEntry implements ports.EntryMirror.
func (c *Client) UpsertEntry(ctx context.Context, sheet string, header []string, row ports.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if row.EntryID <= 0 {
		return "", fmt.Errorf("invalid entry id %d", row.EntryID)
	}
	if _, err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(sheet, "A1"), &gsheet.ValueRange{Values: [][]any{headerRow}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write header of %s: %w", sheet, err)
	}

	ids, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(sheet, "A:A")).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read ids of %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: [][]any{row.Values}}
	if n := findRow(ids.Values, row.EntryID); n > 0 {
		rng := a1(sheet, fmt.Sprintf("A%d", n))
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("update row %d of %s: %w", n, sheet, err)
		}
		return rng, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(sheet, "A1"), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append row to %s: %w", sheet, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return a1(sheet, "A:A"), nil
}

// DeleteEntry implements ports.EntryMirror.
func (c *Client) DeleteEntry(ctx context.Context, sheet string, entryID int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheetID, ok, err := c.lookupSheet(ctx, sheet)
	if err != nil || !ok {
		return err
	}

	ids, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(sheet, "A:A")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ids of %s: %w", sheet, err)
	}
	n := findRow(ids.Values, entryID)
	if n <= 0 {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:         sheetID,
			Dimension:       "ROWS",
			StartIndex:      int64(n - 1),
			EndIndex:        int64(n),
			ForceSendFields: []string{"SheetId", "StartIndex"},
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", n, sheet, err)
	}
	return nil
}

// ClearSheet implements ports.EntryMirror.
func (c *Client) ClearSheet(ctx context.Context, sheet string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, ok, err := c.lookupSheet(ctx, sheet)
	if err != nil || !ok {
		return err
	}
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1(sheet, "A:ZZ"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	return nil
}

// ensureSheet returns the id of the sheet, creating it when missing.
func (c *Client) ensureSheet(ctx context.Context, title string) (int64, error) {
	id, ok, err := c.lookupSheet(ctx, title)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		c.InvalidateSheetCache()
		return 0, fmt.Errorf("add sheet %s: empty reply", title)
	}
	id = resp.Replies[0].AddSheet.Properties.SheetId

	c.mu.Lock()
	if c.sheetIDs == nil {
		c.sheetIDs = map[string]int64{}
	}
	c.sheetIDs[title] = id
	c.mu.Unlock()

	slog.InfoContext(ctx, "Created mirror sheet", "sheet", title, "sheet_id", id)
	return id, nil
}

// lookupSheet resolves a sheet title, refreshing the cache when stale.
func (c *Client) lookupSheet(ctx context.Context, title string) (int64, bool, error) {
	c.mu.Lock()
	if time.Now().Before(c.cacheExpiresAt) {
		id, ok := c.sheetIDs[title]
		c.mu.Unlock()
		if ok {
			return id, true, nil
		}
	} else {
		c.mu.Unlock()
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties(sheetId,title)").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read spreadsheet: %w", err)
	}
	ids := make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	c.mu.Lock()
	c.sheetIDs = ids
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	id, ok := ids[title]
	return id, ok, nil
}

// InvalidateSheetCache forces the next lookup to read the spreadsheet.
func (c *Client) InvalidateSheetCache() {
	c.mu.Lock()
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

// a1 builds a quoted A1 range, e.g. 'Form 1'!A:A.
func a1(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

// findRow returns the 1-based row whose first cell is entryID, or 0. The
// header row never matches.
func findRow(values [][]any, entryID int64) int {
	want := strconv.FormatInt(entryID, 10)
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}
