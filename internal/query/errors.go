package query

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflicting options")
)

// NotFoundError is returned when a strict single-row lookup has no match.
type NotFoundError struct {
	Alias string
}

func (e *NotFoundError) Error() string {
	return e.Alias + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError is returned when mutually exclusive options are combined.
type ConflictError struct {
	Alias  string
	Params []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: cannot use ascending (%s) and descending (%s) at the same time",
		e.Alias, param(e.Params, 0), param(e.Params, 1))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func param(params []string, i int) string {
	if i < len(params) {
		return params[i]
	}
	return "?"
}
