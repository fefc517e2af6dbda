// Package memory is an in-process exporter used when no spreadsheet is
// configured, and as a test double for the worker.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budget/internal/sheets"
)

var _ sheets.Exporter = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	rows    []sheets.ExpenseRow
	deleted map[string]bool

	// Err, when set, is returned by every call.
	Err error
}

func New() *Store {
	return &Store{deleted: map[string]bool{}}
}

// AppendExpense stores the row and returns a synthetic row reference.
func (s *Store) AppendExpense(_ context.Context, row sheets.ExpenseRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if row.ID == "" {
		return "", errors.New("append expense: empty id")
	}
	for i, r := range s.rows {
		if r.ID == row.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) MarkDeleted(_ context.Context, year int, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, r := range s.rows {
		if r.ID == id && r.Year == year {
			s.deleted[id] = true
			return nil
		}
	}
	return fmt.Errorf("mark %s deleted: %w", id, sheets.ErrRowNotFound)
}

// Rows returns a copy of the appended rows.
func (s *Store) Rows() []sheets.ExpenseRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.ExpenseRow(nil), s.rows...)
}

func (s *Store) Deleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted[id]
}
