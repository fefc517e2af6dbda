// Package worker mirrors expense events into the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/log"
	"budget/internal/query"
	"budget/internal/services"
	"budget/internal/sheets"
)

// ExpenseSource loads an expense with its schedule.
type ExpenseSource interface {
	Get(ctx context.Context, id string) (*services.ExpenseWithMonths, error)
}

// SyncWorker handles synchronization of expenses from SQLite to the sheet.
type SyncWorker struct {
	expenses ExpenseSource
	exporter sheets.Exporter
	logger   *log.Logger
}

func NewSyncWorker(expenses ExpenseSource, exporter sheets.Exporter, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		expenses: expenses,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the AMQP handler. A returned error requeues the event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	switch ev.Type {
	case amqp.ExpenseCreated:
		return w.handleCreated(ctx, ev)
	case amqp.ExpenseDeleted:
		return w.handleDeleted(ctx, ev)
	default:
		return fmt.Errorf("unsupported event %q", ev.Type)
	}
}

func (w *SyncWorker) handleCreated(ctx context.Context, ev *amqp.ExpenseEvent) error {
	exp, err := w.expenses.Get(ctx, ev.ExpenseID)
	if errors.Is(err, query.ErrNotFound) {
		// Deleted before we got to it; the delete event follows.
		w.logger.WarnContext(ctx, "Expense gone before export, skipping",
			log.FieldExpenseID, ev.ExpenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense %s: %w", ev.ExpenseID, err)
	}

	ref, err := w.exporter.AppendExpense(ctx, sheets.NewExpenseRow(exp.Expense, exp.Months))
	if err != nil {
		return fmt.Errorf("append expense %s: %w", ev.ExpenseID, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced expense",
		log.FieldExpenseID, exp.ID,
		log.FieldExpense, exp.Name,
		log.FieldSheetsRef, ref,
		log.FieldAmount, exp.Total.Cents)
	return nil
}

func (w *SyncWorker) handleDeleted(ctx context.Context, ev *amqp.ExpenseEvent) error {
	err := w.exporter.MarkDeleted(ctx, ev.Year, ev.ExpenseID)
	if errors.Is(err, sheets.ErrRowNotFound) {
		w.logger.WarnContext(ctx, "Expense never exported, nothing to mark",
			log.FieldExpenseID, ev.ExpenseID,
			log.FieldYear, ev.Year)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark expense %s deleted: %w", ev.ExpenseID, err)
	}

	w.logger.InfoContext(ctx, "Successfully marked expense deleted",
		log.FieldExpenseID, ev.ExpenseID)
	return nil
}
