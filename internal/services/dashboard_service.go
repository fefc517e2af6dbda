package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"budget/internal/business"
	"budget/internal/core"
	"budget/internal/query"
	"budget/internal/storage"
)

// DashboardService builds the yearly comparison of expenses and incomes.
type DashboardService struct {
	queries storage.Queries
	months  business.MonthBusiness
	expense business.ExpenseBusiness
}

func NewDashboardService(queries storage.Queries) *DashboardService {
	return &DashboardService{queries: queries}
}

// yearData is everything the dashboard reads for one year.
type yearData struct {
	expenses      []core.Expense
	incomes       []core.Income
	expenseMonths []core.Month
	incomeMonths  []core.Month
}

// load reads the live expenses, incomes and months of year concurrently and
// splits the months by owner.
func (s *DashboardService) load(ctx context.Context, year int) (*yearData, error) {
	if year < 1900 || year > 2999 {
		return nil, &core.ValidationError{Entity: "dashboard", Err: core.ErrInvalidYear}
	}
	params := &query.Parameters{Year: year}

	var (
		d      yearData
		months []core.Month
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.queries.Expenses.List(ctx, query.Options{Parameters: params, SkipRelations: true})
		if err != nil {
			return fmt.Errorf("expenses: %w", err)
		}
		d.expenses = res.Rows()
		return nil
	})
	g.Go(func() error {
		res, err := s.queries.Incomes.List(ctx, query.Options{Parameters: params, SkipRelations: true})
		if err != nil {
			return fmt.Errorf("incomes: %w", err)
		}
		d.incomes = res.Rows()
		return nil
	})
	g.Go(func() error {
		res, err := s.queries.Months.List(ctx, query.Options{Parameters: params, DefaultAsc: "order"})
		if err != nil {
			return fmt.Errorf("months: %w", err)
		}
		months = res.Rows()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard %d: %w", year, err)
	}

	for _, m := range months {
		switch {
		case m.ExpenseID != nil:
			d.expenseMonths = append(d.expenseMonths, m)
		case m.IncomeID != nil:
			d.incomeMonths = append(d.incomeMonths, m)
		}
	}
	return &d, nil
}

// Overview aggregates the year month by month.
func (s *DashboardService) Overview(ctx context.Context, year int) (*core.YearOverview, error) {
	d, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}

	ov := &core.YearOverview{
		Year:     year,
		Expenses: s.months.ByOrder(d.expenseMonths),
		Incomes:  s.months.ByOrder(d.incomeMonths),
		ByType:   s.expense.Summarize(d.expenses),
	}
	for _, i := range d.incomes {
		ov.Earned = ov.Earned.Add(i.Total)
	}
	for _, t := range ov.Expenses {
		ov.Spent = ov.Spent.Add(t.Value)
	}
	ov.Balance = ov.Earned.Sub(ov.Spent)
	return ov, nil
}

// Charts returns the monthly expense and income series of year, in euros.
func (s *DashboardService) Charts(ctx context.Context, year int) ([]business.ChartSeries, error) {
	d, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}
	return []business.ChartSeries{
		s.months.Chart("Expenses", d.expenseMonths),
		s.months.Chart("Incomes", d.incomeMonths),
	}, nil
}
