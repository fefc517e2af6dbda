package business

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
)

var (
	ErrInvalidInstalments = errors.New("instalments must be between 1 and 60")
	ErrInvalidStartMonth  = errors.New("start month must be between 1 and 12")
)

const maxInstalments = 60

// ExpenseBusiness schedules expenses over months and derives their status.
type ExpenseBusiness struct {
	// Now is the clock used by Status. Nil means time.Now.
	Now func() time.Time
	// NewID generates month ids. Nil means uuid.NewString.
	NewID func() string
}

func (b ExpenseBusiness) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b ExpenseBusiness) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

// Schedule spreads the total of e over instalments months starting from
// startMonth of e.Year, rolling over into the following years. The
// remainder of the division is charged on the first month. Each month is
// due on its last day.
func (b ExpenseBusiness) Schedule(e core.Expense, startMonth, instalments int) ([]core.Month, error) {
	if instalments < 1 || instalments > maxInstalments {
		return nil, ErrInvalidInstalments
	}
	if startMonth < 1 || startMonth > 12 {
		return nil, ErrInvalidStartMonth
	}
	if err := e.Total.Validate(); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", e.Name, err)
	}

	now := b.now().UTC()
	expenseID := e.ID
	parts := e.Total.Split(instalments)
	months := make([]core.Month, instalments)
	for i, value := range parts {
		offset := startMonth - 1 + i
		year := e.Year + offset/12
		info := core.Months[offset%12]
		due := time.Date(year, time.Month(info.Order)+1, 0, 0, 0, 0, 0, time.UTC)

		months[i] = core.Month{
			ID:         b.newID(),
			Order:      info.Order,
			Code:       info.Code,
			Label:      info.Label,
			Year:       year,
			Value:      value,
			Paid:       false,
			DueDate:    &due,
			ExpenseID:  &expenseID,
			Timestamps: core.Timestamps{CreatedAt: now, UpdatedAt: now},
		}
	}
	return months, nil
}

// Status derives the status of an expense from its months: paid when every
// month is paid, overdue when an unpaid month is past its due date, pending
// otherwise. An expense without months is pending.
func (b ExpenseBusiness) Status(months []core.Month) core.Status {
	if len(months) == 0 {
		return core.StatusPending
	}
	now := b.now()
	allPaid := true
	for _, m := range months {
		if m.Paid {
			continue
		}
		allPaid = false
		if m.DueDate != nil && m.DueDate.Before(now) {
			return core.StatusOverdue
		}
	}
	if allPaid {
		return core.StatusPaid
	}
	return core.StatusPending
}

// Summarize totals expenses by type, in the order types are first seen.
func (ExpenseBusiness) Summarize(expenses []core.Expense) []core.TypeAmount {
	index := make(map[core.ExpenseType]int)
	var out []core.TypeAmount
	for _, e := range expenses {
		i, ok := index[e.Type]
		if !ok {
			i = len(out)
			index[e.Type] = i
			out = append(out, core.TypeAmount{Type: e.Type})
		}
		out[i].Amount = out[i].Amount.Add(e.Total)
	}
	return out
}
