package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"budget/internal/core"
	"budget/internal/log"
	ports "budget/internal/sheets"
)

// fakeSheets serves the three values endpoints used by Client over one
// in-memory column of ids.
type fakeSheets struct {
	mu       sync.Mutex
	ids      []any
	appended [][]any
	updated  map[string][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/v4/spreadsheets/sheet-1/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)

	switch {
	case r.Method == http.MethodGet:
		values := make([][]any, len(f.ids))
		for i, id := range f.ids {
			values[i] = []any{id}
		}
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &vr)
		for _, row := range vr.Values {
			f.appended = append(f.appended, row)
			f.ids = append(f.ids, row[0])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"updates":       map[string]any{"updatedRange": "2025 Expenses!A2:I2"},
		})
	case r.Method == http.MethodPut:
		var vr struct {
			Values [][]any `json:"values"`
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &vr)
		if f.updated == nil {
			f.updated = map[string][]any{}
		}
		f.updated[rng] = vr.Values[0]
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng})
	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"}, log.Discard(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Discard())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AppendExpense(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	row := ports.ExpenseRow{ID: "e1", Year: 2025, Name: "Rent", Type: core.ExpenseFixed, Total: core.Cents(120000)}
	ref, err := c.AppendExpense(context.Background(), row)
	if err != nil {
		t.Fatalf("AppendExpense() error = %v", err)
	}
	if ref != "2025 Expenses!A2:I2" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.appended) != 2 || fake.appended[0][0] != "ID" || fake.appended[1][0] != "e1" {
		t.Fatalf("expected header then row, got %v", fake.appended)
	}
	if fake.appended[1][5] != "1200.00" {
		t.Errorf("total cell = %v", fake.appended[1][5])
	}

	if _, err := c.AppendExpense(context.Background(), ports.ExpenseRow{ID: "e2", Year: 2025}); err != nil {
		t.Fatalf("second AppendExpense() error = %v", err)
	}
	if len(fake.appended) != 3 {
		t.Fatalf("header must be written once, got %d rows", len(fake.appended))
	}
}

func TestClient_AppendExpense_Redelivered(t *testing.T) {
	fake := &fakeSheets{ids: []any{"ID", "e1"}}
	c := newTestClient(t, fake)

	ref, err := c.AppendExpense(context.Background(), ports.ExpenseRow{ID: "e1", Year: 2025})
	if err != nil {
		t.Fatalf("AppendExpense() error = %v", err)
	}
	if ref != "2025 Expenses!A2:I2" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.appended) != 0 {
		t.Fatalf("expected no append for a known id, got %v", fake.appended)
	}
}

func TestClient_AppendExpense_EmptyID(t *testing.T) {
	c := newTestClient(t, &fakeSheets{})
	if _, err := c.AppendExpense(context.Background(), ports.ExpenseRow{Year: 2025}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestClient_MarkDeleted(t *testing.T) {
	fake := &fakeSheets{ids: []any{"ID", "e1", "e2"}}
	c := newTestClient(t, fake)

	if err := c.MarkDeleted(context.Background(), 2025, "e2"); err != nil {
		t.Fatalf("MarkDeleted() error = %v", err)
	}
	if _, ok := fake.updated["2025 Expenses!I3"]; !ok {
		t.Fatalf("expected update of row 3, got %v", fake.updated)
	}

	err := c.MarkDeleted(context.Background(), 2025, "missing")
	if !errors.Is(err, ports.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Expenses", 2025, "2025 Expenses"},
		{"2024 Expenses", 2025, "2024 Expenses"},
		{"  Budget ", 2023, "2023 Budget"},
		{"", 2025, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
