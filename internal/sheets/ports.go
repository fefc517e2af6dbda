// Package sheets exports expenses to a spreadsheet, one row per expense.
package sheets

import (
	"context"
	"errors"
	"strconv"

	"budget/internal/core"
)

// ErrRowNotFound is returned when no exported row carries the requested id.
var ErrRowNotFound = errors.New("sheet row not found")

// Header is the first row of every yearly expenses sheet.
var Header = []any{"ID", "Name", "Type", "Status", "Bill", "Total", "Instalments", "Paid", "Deleted"}

// Ports for outbound adapters.
type (
	ExpenseWriter interface {
		AppendExpense(ctx context.Context, row ExpenseRow) (rowRef string, err error)
	}

	ExpenseDeleter interface {
		// MarkDeleted flags the row of expense id in the sheet of year.
		MarkDeleted(ctx context.Context, year int, id string) error
	}

	Exporter interface {
		ExpenseWriter
		ExpenseDeleter
	}
)

// ExpenseRow is the flattened form of an expense written to the sheet.
type ExpenseRow struct {
	ID          string
	Year        int
	Name        string
	Type        core.ExpenseType
	Status      core.Status
	Bill        string
	Total       core.Money
	Instalments int
	Paid        core.Money
}

// NewExpenseRow flattens e and its monthly instalments.
func NewExpenseRow(e core.Expense, months []core.Month) ExpenseRow {
	row := ExpenseRow{
		ID:          e.ID,
		Year:        e.Year,
		Name:        e.Name,
		Type:        e.Type,
		Status:      e.Status,
		Total:       e.Total,
		Instalments: len(months),
	}
	if e.Bill != nil {
		row.Bill = e.Bill.Name
	}
	for _, m := range months {
		if m.Paid {
			row.Paid = row.Paid.Add(m.Value)
		}
	}
	return row
}

// Values returns the cells of the row in Header order.
func (r ExpenseRow) Values() []any {
	return []any{
		r.ID,
		r.Name,
		string(r.Type),
		string(r.Status),
		r.Bill,
		r.Total.String(),
		strconv.Itoa(r.Instalments),
		r.Paid.String(),
		"",
	}
}
