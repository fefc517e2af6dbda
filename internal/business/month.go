// Package business holds the bookkeeping over months and expenses: schedules,
// totals, statuses and chart series. Everything here works on in-memory
// slices and does no I/O.
package business

import "budget/internal/core"

// MonthBusiness aggregates monthly entries.
type MonthBusiness struct{}

// Totals sums value, paid and pending amounts over months.
func (MonthBusiness) Totals(months []core.Month) core.MonthTotals {
	var t core.MonthTotals
	for _, m := range months {
		t.Value = t.Value.Add(m.Value)
		if m.Paid {
			t.Paid = t.Paid.Add(m.Value)
		} else {
			t.Pending = t.Pending.Add(m.Value)
		}
	}
	return t
}

// ByOrder buckets months into the twelve calendar months. Every bucket is
// present, in calendar order, even when it holds no entry.
func (b MonthBusiness) ByOrder(months []core.Month) []core.MonthTotals {
	groups := make([][]core.Month, 12)
	for _, m := range months {
		if m.Order < 1 || m.Order > 12 {
			continue
		}
		groups[m.Order-1] = append(groups[m.Order-1], m)
	}

	out := make([]core.MonthTotals, 12)
	for i, info := range core.Months {
		t := b.Totals(groups[i])
		t.Order, t.Code, t.Label = info.Order, info.Code, info.Label
		out[i] = t
	}
	return out
}

// ChartSeries is one labelled line of a chart, in euros.
type ChartSeries struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Chart returns the monthly totals of months as a twelve point series.
func (b MonthBusiness) Chart(label string, months []core.Month) ChartSeries {
	s := ChartSeries{Label: label, Labels: make([]string, 12), Values: make([]float64, 12)}
	for i, t := range b.ByOrder(months) {
		s.Labels[i] = t.Label
		s.Values[i] = t.Value.Euros()
	}
	return s
}
