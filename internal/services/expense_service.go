package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/business"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/query"
	"budget/internal/storage"
)

// EventPublisher is the part of the AMQP client used to announce changes.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// NewExpense is the input of ExpenseService.Create.
type NewExpense struct {
	Name        string           `json:"name"`
	Year        int              `json:"year"`
	Type        core.ExpenseType `json:"type"`
	Description string           `json:"description"`
	Total       core.Money       `json:"total"`
	BillID      string           `json:"bill_id"`
	StartMonth  int              `json:"start_month"`
	Instalments int              `json:"instalments"`
}

// ExpenseWithMonths is an expense together with its schedule.
type ExpenseWithMonths struct {
	core.Expense
	Months []core.Month `json:"months"`
}

// ExpenseService orchestrates expense operations across SQLite and AMQP
type ExpenseService struct {
	*Service[core.Expense]

	storage   *storage.SQLiteRepository
	publisher EventPublisher
	business  business.ExpenseBusiness
	logger    *log.StructuredLogger
	now       func() time.Time
}

// NewExpenseService builds the service. A nil publisher disables events.
func NewExpenseService(repo *storage.SQLiteRepository, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		Service:   NewService(repo.Expenses),
		storage:   repo,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentExpense)),
		now:       time.Now,
	}
}

// Create stores the expense and its monthly schedule in one transaction,
// then publishes expense.created. A failed publish is logged and does not
// fail the call.
func (s *ExpenseService) Create(ctx context.Context, in NewExpense) (*ExpenseWithMonths, error) {
	now := s.now().UTC()
	e := core.Expense{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Year:        in.Year,
		Type:        in.Type,
		Status:      core.StatusPending,
		Description: strings.TrimSpace(in.Description),
		Total:       in.Total,
		BillID:      in.BillID,
		Timestamps:  core.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	startMonth, instalments := in.StartMonth, in.Instalments
	if startMonth == 0 {
		startMonth = 1
	}
	if instalments == 0 {
		instalments = 1
	}
	months, err := s.business.Schedule(e, startMonth, instalments)
	if err != nil {
		return nil, &core.ValidationError{Entity: "expense", Err: err}
	}

	err = s.storage.WithTransaction(ctx, func(tx *storage.Tx) error {
		bill, err := tx.Bills.FindBy(ctx, query.FindByOptions{
			Search:  query.SearchSpec{By: "id", Value: e.BillID},
			Options: query.Options{SkipRelations: true},
		})
		if errors.Is(err, query.ErrNotFound) {
			return &core.ValidationError{Entity: "expense", Err: core.ErrMissingOwner}
		}
		if err != nil {
			return fmt.Errorf("bill %s: %w", e.BillID, err)
		}
		if err := tx.Insert(ctx, "expense", e); err != nil {
			return err
		}
		for _, m := range months {
			if err := tx.Insert(ctx, "month", m); err != nil {
				return err
			}
		}
		e.Bill = bill
		return nil
	})
	if err != nil {
		s.logger.LogError(ctx, "Failed to create expense", err, log.OpCreate, log.LogFields{
			log.FieldExpense: e.Name,
		})
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.logger.LogExpenseCreated(ctx, e.ID, e.Name, e.Total.Cents, string(e.Type), len(months))
	s.publish(ctx, amqp.NewExpenseEvent(amqp.ExpenseCreated, e.ID, e.Name, e.Year, e.Total.Cents))

	return &ExpenseWithMonths{Expense: e, Months: months}, nil
}

// Get returns the expense with id and its live months. The status is
// derived from the months.
func (s *ExpenseService) Get(ctx context.Context, id string) (*ExpenseWithMonths, error) {
	e, err := s.queries.FindBy(ctx, query.FindByOptions{
		Search: query.SearchSpec{By: "id", Value: id},
	})
	if err != nil {
		return nil, err
	}
	months, err := s.Months(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Status = business.ExpenseBusiness{Now: s.now}.Status(months)
	return &ExpenseWithMonths{Expense: *e, Months: months}, nil
}

// Months lists the live months of an expense in schedule order.
func (s *ExpenseService) Months(ctx context.Context, expenseID string) ([]core.Month, error) {
	res, err := s.storage.Months.List(ctx, query.Options{
		Filters:    []query.FilterSpec{{Column: "expense_id", Value: expenseID, Operator: query.OpEq}},
		DefaultAsc: "due_date",
	})
	if err != nil {
		return nil, fmt.Errorf("months of expense %s: %w", expenseID, err)
	}
	return res.Rows(), nil
}

// Delete soft deletes the expense and its months, then publishes
// expense.deleted.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	var deleted core.Expense
	err := s.storage.WithTransaction(ctx, func(tx *storage.Tx) error {
		e, err := tx.Expenses.FindBy(ctx, query.FindByOptions{
			Search:  query.SearchSpec{By: "id", Value: id},
			Options: query.Options{SkipRelations: true},
		})
		if err != nil {
			return err
		}
		if _, err := tx.SoftDelete(ctx, "month", "expense_id", id); err != nil {
			return err
		}
		n, err := tx.SoftDelete(ctx, "expense", "id", id)
		if err != nil {
			return err
		}
		if n == 0 {
			return &query.NotFoundError{Alias: "expense"}
		}
		deleted = *e
		return nil
	})
	if err != nil {
		if !errors.Is(err, query.ErrNotFound) {
			s.logger.LogError(ctx, "Failed to delete expense", err, log.OpDelete, log.LogFields{
				log.FieldExpenseID: id,
			})
		}
		return fmt.Errorf("delete expense %s: %w", id, err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ExpenseDeleted, deleted.ID, deleted.Name, deleted.Year, deleted.Total.Cents))
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		s.logger.LogEventSkipped(ctx, string(ev.Type), ev.ExpenseID, "AMQP client not available")
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		s.logger.LogError(ctx, "Failed to publish expense event", err, log.OpPublish, log.LogFields{
			log.FieldEvent:     string(ev.Type),
			log.FieldExpenseID: ev.ExpenseID,
		})
	}
}
