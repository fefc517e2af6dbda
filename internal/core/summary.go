package core

// TypeAmount is an amount aggregated by expense type.
type TypeAmount struct {
	Type   ExpenseType `json:"type"`
	Amount Money       `json:"amount"`
}

// MonthTotals sums the monthly entries of one calendar month.
type MonthTotals struct {
	Order   int    `json:"order"`
	Code    string `json:"code"`
	Label   string `json:"label"`
	Value   Money  `json:"value"`
	Paid    Money  `json:"paid"`
	Pending Money  `json:"pending"`
}

// YearOverview compares expenses and incomes month by month for one year.
type YearOverview struct {
	Year     int           `json:"year"`
	Expenses []MonthTotals `json:"expenses"`
	Incomes  []MonthTotals `json:"incomes"`
	ByType   []TypeAmount  `json:"by_type"`
	Spent    Money         `json:"spent"`
	Earned   Money         `json:"earned"`
	Balance  Money         `json:"balance"`
}
