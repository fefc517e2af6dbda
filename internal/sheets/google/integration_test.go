//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/log"
	ports "budget/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_AppendAndMarkDeleted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
	}
	if cfg.CredentialsFile == "" && cfg.CredentialsJSON == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	row := ports.ExpenseRow{
		ID:          "integration-" + time.Now().Format("20060102150405"),
		Year:        time.Now().Year(),
		Name:        "Integration Test Expense",
		Type:        core.ExpenseVariable,
		Status:      core.StatusPending,
		Total:       core.Cents(1234),
		Instalments: 1,
	}
	ref, err := client.AppendExpense(ctx, row)
	if err != nil {
		t.Fatalf("Failed to append expense: %v", err)
	}
	t.Logf("Appended expense at %s", ref)

	if err := client.MarkDeleted(ctx, row.Year, row.ID); err != nil {
		t.Fatalf("Failed to mark expense deleted: %v", err)
	}
}
