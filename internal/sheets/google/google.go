package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budget/internal/log"
	ports "budget/internal/sheets"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID string
	// SheetName is the base name of the yearly sheets, e.g. "Expenses"
	// becomes "2025 Expenses".
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account. Extra
// options are appended after the credentials, so callers can point the
// client at another endpoint or HTTP client.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Expenses"
	}
	logger = logger.WithComponent(log.ComponentSheets)

	var clientOpts []goption.ClientOption
	if len(opts) == 0 {
		creds, err := readCredentials(cfg)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(creds),
			"scope", gsheet.SpreadsheetsScope)
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     base,
		logger:        logger,
	}, nil
}

func readCredentials(cfg Config) ([]byte, error) {
	if j := strings.TrimSpace(cfg.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	path := strings.TrimSpace(cfg.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// NewHTTPClient returns an HTTP client tuned for the Sheets API, for use
// with option.WithHTTPClient.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// AppendExpense appends row below the last used row of the sheet for the
// expense's year, writing the header first when the sheet is empty.
func (c *Client) AppendExpense(ctx context.Context, row ports.ExpenseRow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if row.ID == "" {
		return "", errors.New("append expense: empty id")
	}
	sheet := yearPrefixedName(c.sheetBase, row.Year)

	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return "", err
	}
	// Redelivered events find their row already written.
	if idx := indexOf(ids, row.ID); idx >= 0 {
		return fmt.Sprintf("%s!A%d:I%d", sheet, idx+1, idx+1), nil
	}
	values := [][]any{row.Values()}
	if len(ids) == 0 {
		values = append([][]any{ports.Header}, values...)
	}

	rng := fmt.Sprintf("%s!A:I", sheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Expense appended to sheet",
		log.FieldExpenseID, row.ID,
		"range", ref)
	return ref, nil
}

// MarkDeleted writes a deletion mark in the last column of the row whose
// first column is id.
func (c *Client) MarkDeleted(ctx context.Context, year int, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, year)

	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return err
	}
	idx := indexOf(ids, id)
	if idx < 0 {
		return fmt.Errorf("mark %s deleted in %s: %w", id, sheet, ports.ErrRowNotFound)
	}

	rng := fmt.Sprintf("%s!I%d", sheet, idx+1)
	vr := &gsheet.ValueRange{Values: [][]any{{time.Now().UTC().Format(time.RFC3339)}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Expense marked deleted in sheet",
		log.FieldExpenseID, id,
		"range", rng)
	return nil
}

// readIDs returns column A of sheet, one entry per used row.
func (c *Client) readIDs(ctx context.Context, sheet string) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
