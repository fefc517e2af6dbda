package memory

import (
	"context"
	"errors"
	"testing"

	"budget/internal/core"
	"budget/internal/sheets"
)

func TestMemoryStoreAppendAndMarkDeleted(t *testing.T) {
	s := New()
	ref, err := s.AppendExpense(context.Background(), sheets.ExpenseRow{ID: "e1", Year: 2025})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	if err := s.MarkDeleted(context.Background(), 2024, "e1"); !errors.Is(err, sheets.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound for wrong year, got %v", err)
	}
	if err := s.MarkDeleted(context.Background(), 2025, "e1"); err != nil {
		t.Fatalf("MarkDeleted() error = %v", err)
	}
	if !s.Deleted("e1") {
		t.Fatal("expected e1 to be marked deleted")
	}
	if ref, _ := s.AppendExpense(context.Background(), sheets.ExpenseRow{ID: "e1", Year: 2025}); ref != "mem:1" {
		t.Fatalf("redelivered row got ref %q", ref)
	}
	if len(s.Rows()) != 1 {
		t.Fatalf("unexpected rows %v", s.Rows())
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	if _, err := New().AppendExpense(context.Background(), sheets.ExpenseRow{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestNewExpenseRow(t *testing.T) {
	e := core.Expense{
		ID: "e1", Name: "Rent", Year: 2025, Type: core.ExpenseFixed, Status: core.StatusPending,
		Total: core.Cents(300), Bill: &core.Bill{Name: "House"},
	}
	months := []core.Month{
		{Value: core.Cents(100), Paid: true},
		{Value: core.Cents(100), Paid: true},
		{Value: core.Cents(100)},
	}
	row := sheets.NewExpenseRow(e, months)
	if row.Bill != "House" || row.Instalments != 3 || row.Paid.Cents != 200 {
		t.Fatalf("unexpected row %+v", row)
	}
	values := row.Values()
	if len(values) != len(sheets.Header) {
		t.Fatalf("values and header differ in length: %d vs %d", len(values), len(sheets.Header))
	}
	if values[5] != "3.00" || values[7] != "2.00" {
		t.Fatalf("unexpected money cells %v", values)
	}
}
