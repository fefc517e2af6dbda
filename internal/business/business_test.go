package business

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}
}

func TestSchedule(t *testing.T) {
	b := ExpenseBusiness{
		Now:   func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) },
		NewID: counterIDs(),
	}
	e := core.Expense{ID: "e1", Name: "Laptop", Year: 2025, Total: core.Cents(100000)}

	months, err := b.Schedule(e, 11, 3)
	require.NoError(t, err)
	require.Len(t, months, 3)

	assert.Equal(t, "nov", months[0].Code)
	assert.Equal(t, 2025, months[0].Year)
	assert.Equal(t, int64(33334), months[0].Value.Cents)

	assert.Equal(t, "dec", months[1].Code)
	assert.Equal(t, int64(33333), months[1].Value.Cents)

	assert.Equal(t, "jan", months[2].Code)
	assert.Equal(t, 1, months[2].Order)
	assert.Equal(t, 2026, months[2].Year)

	for i, m := range months {
		assert.Equal(t, fmt.Sprintf("m%d", i+1), m.ID)
		require.NotNil(t, m.ExpenseID)
		assert.Equal(t, "e1", *m.ExpenseID)
		assert.Nil(t, m.IncomeID)
		assert.NoError(t, m.Validate())
	}
	require.NotNil(t, months[1].DueDate)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *months[1].DueDate)
}

func TestSchedule_Rejects(t *testing.T) {
	b := ExpenseBusiness{}
	e := core.Expense{Year: 2025, Total: core.Cents(100)}

	_, err := b.Schedule(e, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInstalments)
	_, err = b.Schedule(e, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidStartMonth)
	_, err = b.Schedule(core.Expense{Year: 2025}, 1, 1)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	b := ExpenseBusiness{Now: func() time.Time { return now }}
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name   string
		months []core.Month
		want   core.Status
	}{
		{"no months", nil, core.StatusPending},
		{"all paid", []core.Month{{Paid: true, DueDate: &past}, {Paid: true}}, core.StatusPaid},
		{"unpaid past due", []core.Month{{Paid: true}, {DueDate: &past}}, core.StatusOverdue},
		{"unpaid not yet due", []core.Month{{Paid: true}, {DueDate: &future}}, core.StatusPending},
		{"unpaid without due date", []core.Month{{}}, core.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Status(tt.months))
		})
	}
}

func TestSummarize(t *testing.T) {
	got := ExpenseBusiness{}.Summarize([]core.Expense{
		{Type: core.ExpenseVariable, Total: core.Cents(500)},
		{Type: core.ExpenseFixed, Total: core.Cents(1000)},
		{Type: core.ExpenseVariable, Total: core.Cents(250)},
	})
	assert.Equal(t, []core.TypeAmount{
		{Type: core.ExpenseVariable, Amount: core.Cents(750)},
		{Type: core.ExpenseFixed, Amount: core.Cents(1000)},
	}, got)
	assert.Empty(t, ExpenseBusiness{}.Summarize(nil))
}

func TestMonthTotals(t *testing.T) {
	got := MonthBusiness{}.Totals([]core.Month{
		{Value: core.Cents(100), Paid: true},
		{Value: core.Cents(250)},
		{Value: core.Cents(50), Paid: true},
	})
	assert.Equal(t, int64(400), got.Value.Cents)
	assert.Equal(t, int64(150), got.Paid.Cents)
	assert.Equal(t, int64(250), got.Pending.Cents)
}

func TestByOrderAndChart(t *testing.T) {
	months := []core.Month{
		{Order: 3, Value: core.Cents(100)},
		{Order: 3, Value: core.Cents(50), Paid: true},
		{Order: 12, Value: core.Cents(1000)},
		{Order: 0, Value: core.Cents(999)},
	}

	buckets := MonthBusiness{}.ByOrder(months)
	require.Len(t, buckets, 12)
	assert.Equal(t, "jan", buckets[0].Code)
	assert.Zero(t, buckets[0].Value.Cents)
	assert.Equal(t, int64(150), buckets[2].Value.Cents)
	assert.Equal(t, int64(50), buckets[2].Paid.Cents)
	assert.Equal(t, "December", buckets[11].Label)

	chart := MonthBusiness{}.Chart("expenses", months)
	assert.Equal(t, "expenses", chart.Label)
	assert.Equal(t, "March", chart.Labels[2])
	assert.InDelta(t, 1.5, chart.Values[2], 1e-9)
	assert.InDelta(t, 10.0, chart.Values[11], 1e-9)
}
