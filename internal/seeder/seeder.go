// Package seeder loads the initial users, bills, expenses, incomes and
// pokedex entries from JSON files. Seeding is idempotent: rows that already
// exist are skipped, soft-deleted ones included, so deletions survive a
// reseed.
package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/query"
	"budget/internal/services"
	"budget/internal/storage"
)

// Seed file names, relative to the seed directory.
const (
	UsersFile    = "users.json"
	BillsFile    = "bills.json"
	ExpensesFile = "expenses.json"
	IncomesFile  = "incomes.json"
	PokemonFile  = "pokemon.json"
)

type (
	userSeed struct {
		Name   string      `json:"name"`
		Email  string      `json:"email"`
		Role   core.Role   `json:"role"`
		Status core.Status `json:"status"`
	}

	billSeed struct {
		Name      string      `json:"name"`
		Year      int         `json:"year"`
		Status    core.Status `json:"status"`
		UserEmail string      `json:"user_email"`
	}

	expenseSeed struct {
		services.NewExpense
		Bill      string `json:"bill"`
		UserEmail string `json:"user_email"`
	}

	incomeSeed struct {
		Name      string      `json:"name"`
		Year      int         `json:"year"`
		Source    string      `json:"source"`
		Status    core.Status `json:"status"`
		Total     core.Money  `json:"total"`
		UserEmail string      `json:"user_email"`
		// Months lists the calendar months the total is spread over.
		Months []int `json:"months"`
	}

	pokemonSeed struct {
		Name   string   `json:"name"`
		Order  int      `json:"order"`
		Types  []string `json:"types"`
		Sprite string   `json:"sprite"`
		Height int      `json:"height"`
		Weight int      `json:"weight"`
	}

	seeds struct {
		users    []userSeed
		bills    []billSeed
		expenses []expenseSeed
		incomes  []incomeSeed
		pokemon  []pokemonSeed
	}
)

// Report counts created and skipped rows per entity.
type Report struct {
	Created map[string]int
	Skipped map[string]int
}

func newReport() *Report {
	return &Report{Created: map[string]int{}, Skipped: map[string]int{}}
}

type Seeder struct {
	dir      string
	repo     *storage.SQLiteRepository
	expenses *services.ExpenseService
	logger   *log.Logger
	now      func() time.Time
}

func New(dir string, repo *storage.SQLiteRepository, expenses *services.ExpenseService, logger *log.Logger) *Seeder {
	return &Seeder{
		dir:      dir,
		repo:     repo,
		expenses: expenses,
		logger:   logger.WithComponent(log.ComponentSeeder),
		now:      time.Now,
	}
}

// Run reads every seed file and inserts the rows that are missing. Files
// that do not exist are skipped.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	in, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	r := newReport()
	steps := []func(context.Context, *seeds, *Report) error{
		s.seedUsers,
		s.seedBills,
		s.seedExpenses,
		s.seedIncomes,
		s.seedPokemon,
	}
	for _, step := range steps {
		if err := step(ctx, in, r); err != nil {
			return r, err
		}
	}

	s.logger.InfoContext(ctx, "Seeding completed",
		log.FieldOperation, log.OpSeed,
		"created", r.Created,
		"skipped", r.Skipped)
	return r, nil
}

// load parses the seed files concurrently.
func (s *Seeder) load(ctx context.Context) (*seeds, error) {
	in := &seeds{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readFile(UsersFile, &in.users) })
	g.Go(func() error { return s.readFile(BillsFile, &in.bills) })
	g.Go(func() error { return s.readFile(ExpensesFile, &in.expenses) })
	g.Go(func() error { return s.readFile(IncomesFile, &in.incomes) })
	g.Go(func() error { return s.readFile(PokemonFile, &in.pokemon) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Seeder) readFile(name string, dst any) error {
	path := filepath.Join(s.dir, name)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("Seed file not found, skipping", log.FieldFile, path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("parse seed %s: %w", name, err)
	}
	return nil
}

func (s *Seeder) stamps() core.Timestamps {
	now := s.now().UTC()
	return core.Timestamps{CreatedAt: now, UpdatedAt: now}
}

func eq(column string, value any) query.FilterSpec {
	return query.FilterSpec{Column: column, Value: value, Operator: query.OpEq}
}

func lookup(by string, value any, filters ...query.FilterSpec) query.FindByOptions {
	return query.FindByOptions{
		Options:   query.Options{Filters: filters, SkipRelations: true, WithDeleted: true},
		Search:    query.SearchSpec{By: by, Value: value},
		WithThrow: query.Bool(false),
	}
}

// owner resolves a user by email, deleted users included.
func (s *Seeder) owner(ctx context.Context, email string) (*core.User, error) {
	u, err := s.repo.Users.FindBy(ctx, query.FindByOptions{
		Options: query.Options{SkipRelations: true, WithDeleted: true},
		Search:  query.SearchSpec{By: "email", Value: strings.ToLower(strings.TrimSpace(email))},
	})
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}
	return u, nil
}

func (s *Seeder) seedUsers(ctx context.Context, in *seeds, r *Report) error {
	for _, seed := range in.users {
		email := strings.ToLower(strings.TrimSpace(seed.Email))
		existing, err := s.repo.Users.FindBy(ctx, lookup("email", email))
		if err != nil {
			return err
		}
		if existing != nil {
			r.Skipped["user"]++
			continue
		}
		u := core.User{
			ID:         uuid.NewString(),
			Name:       seed.Name,
			Email:      email,
			Role:       defaultRole(seed.Role),
			Status:     defaultStatus(seed.Status, core.StatusActive),
			Timestamps: s.stamps(),
		}
		if err := u.Validate(); err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
		if err := s.repo.Insert(ctx, "user", u); err != nil {
			return err
		}
		r.Created["user"]++
	}
	return nil
}

func (s *Seeder) seedBills(ctx context.Context, in *seeds, r *Report) error {
	for _, seed := range in.bills {
		owner, err := s.owner(ctx, seed.UserEmail)
		if err != nil {
			return fmt.Errorf("seed bill %s: %w", seed.Name, err)
		}
		userID := owner.ID
		existing, err := s.repo.Bills.FindBy(ctx, lookup("name", seed.Name, eq("year", seed.Year), eq("user_id", userID)))
		if err != nil {
			return err
		}
		if existing != nil || owner.DeletedAt != nil {
			r.Skipped["bill"]++
			continue
		}
		b := core.Bill{
			ID:         uuid.NewString(),
			Name:       seed.Name,
			Year:       seed.Year,
			Status:     defaultStatus(seed.Status, core.StatusActive),
			UserID:     userID,
			Timestamps: s.stamps(),
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("seed bill %s: %w", seed.Name, err)
		}
		if err := s.repo.Insert(ctx, "bill", b); err != nil {
			return err
		}
		r.Created["bill"]++
	}
	return nil
}

func (s *Seeder) seedExpenses(ctx context.Context, in *seeds, r *Report) error {
	for _, seed := range in.expenses {
		owner, err := s.owner(ctx, seed.UserEmail)
		if err != nil {
			return fmt.Errorf("seed expense %s: %w", seed.Name, err)
		}
		bill, err := s.repo.Bills.FindBy(ctx, query.FindByOptions{
			Options: query.Options{
				Filters:       []query.FilterSpec{eq("year", seed.Year), eq("user_id", owner.ID)},
				SkipRelations: true,
				WithDeleted:   true,
			},
			Search: query.SearchSpec{By: "name", Value: seed.Bill},
		})
		if err != nil {
			return fmt.Errorf("seed expense %s: bill %s: %w", seed.Name, seed.Bill, err)
		}
		existing, err := s.repo.Expenses.FindBy(ctx, lookup("name", seed.Name, eq("year", seed.Year), eq("bill_id", bill.ID)))
		if err != nil {
			return err
		}
		if existing != nil || bill.DeletedAt != nil || owner.DeletedAt != nil {
			r.Skipped["expense"]++
			continue
		}
		ne := seed.NewExpense
		ne.BillID = bill.ID
		if _, err := s.expenses.Create(ctx, ne); err != nil {
			return fmt.Errorf("seed expense %s: %w", seed.Name, err)
		}
		r.Created["expense"]++
	}
	return nil
}

func (s *Seeder) seedIncomes(ctx context.Context, in *seeds, r *Report) error {
	for _, seed := range in.incomes {
		owner, err := s.owner(ctx, seed.UserEmail)
		if err != nil {
			return fmt.Errorf("seed income %s: %w", seed.Name, err)
		}
		userID := owner.ID
		existing, err := s.repo.Incomes.FindBy(ctx, lookup("name", seed.Name, eq("year", seed.Year), eq("user_id", userID)))
		if err != nil {
			return err
		}
		if existing != nil || owner.DeletedAt != nil {
			r.Skipped["income"]++
			continue
		}

		inc := core.Income{
			ID:         uuid.NewString(),
			Name:       seed.Name,
			Year:       seed.Year,
			Source:     seed.Source,
			Status:     defaultStatus(seed.Status, core.StatusActive),
			Total:      seed.Total,
			UserID:     userID,
			Timestamps: s.stamps(),
		}
		if err := inc.Validate(); err != nil {
			return fmt.Errorf("seed income %s: %w", seed.Name, err)
		}
		months, err := s.incomeMonths(inc, seed.Months)
		if err != nil {
			return fmt.Errorf("seed income %s: %w", seed.Name, err)
		}

		err = s.repo.WithTransaction(ctx, func(tx *storage.Tx) error {
			if err := tx.Insert(ctx, "income", inc); err != nil {
				return err
			}
			for _, m := range months {
				if err := tx.Insert(ctx, "month", m); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed income %s: %w", seed.Name, err)
		}
		r.Created["income"]++
	}
	return nil
}

// incomeMonths spreads the income total over the given calendar months.
func (s *Seeder) incomeMonths(inc core.Income, orders []int) ([]core.Month, error) {
	parts := inc.Total.Split(len(orders))
	incomeID := inc.ID
	months := make([]core.Month, len(orders))
	for i, order := range orders {
		info, ok := core.MonthByOrder(order)
		if !ok {
			return nil, &core.ValidationError{Entity: "month", Err: core.ErrInvalidOrder}
		}
		months[i] = core.Month{
			ID:         uuid.NewString(),
			Order:      info.Order,
			Code:       info.Code,
			Label:      info.Label,
			Year:       inc.Year,
			Value:      parts[i],
			IncomeID:   &incomeID,
			Timestamps: s.stamps(),
		}
	}
	return months, nil
}

func (s *Seeder) seedPokemon(ctx context.Context, in *seeds, r *Report) error {
	for _, seed := range in.pokemon {
		existing, err := s.repo.Pokemon.FindBy(ctx, lookup("order", seed.Order))
		if err != nil {
			return err
		}
		if existing != nil {
			r.Skipped["pokemon"]++
			continue
		}
		p := core.Pokemon{
			ID:         uuid.NewString(),
			Name:       strings.ToLower(seed.Name),
			Order:      seed.Order,
			Status:     core.StatusActive,
			Types:      core.StringList(seed.Types),
			Sprite:     seed.Sprite,
			Height:     seed.Height,
			Weight:     seed.Weight,
			Timestamps: s.stamps(),
		}
		if p.Types == nil {
			p.Types = core.StringList{}
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("seed pokemon %d: %w", seed.Order, err)
		}
		if err := s.repo.Insert(ctx, "pokemon", p); err != nil {
			return err
		}
		r.Created["pokemon"]++
	}
	return nil
}

func defaultRole(r core.Role) core.Role {
	if r == "" {
		return core.RoleUser
	}
	return core.Role(strings.ToLower(string(r)))
}

func defaultStatus(s, def core.Status) core.Status {
	if s == "" {
		return def
	}
	return core.Status(strings.ToLower(string(s)))
}
