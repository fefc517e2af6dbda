package query

import (
	"reflect"
	"strings"
)

type (
	// FilterSpec describes one predicate on a column of the queried entity.
	FilterSpec struct {
		Column           string
		Value            any
		Operator         Op
		IsRelationColumn bool // Column is already qualified (e.g. "bill.name")
	}

	// SearchSpec is a single named lookup. The zero Operator means equality.
	SearchSpec struct {
		By       string
		Value    any
		Operator Op
	}

	// Parameters holds the request-level knobs recognised by the query layer.
	// A nil *Parameters means no parameters were supplied at all, which is
	// different from a non-nil empty value (see UnifyFilters).
	Parameters struct {
		Role   string
		Name   string
		Status string
		Year   int

		Asc  string
		Desc string

		Page  int
		Limit int
	}
)

// Paginated reports whether the caller asked for a page.
func (p *Parameters) Paginated() bool {
	return p != nil && (p.Page != 0 || p.Limit != 0)
}

// UnifyFilters merges the filters derived from params with base.
//
// Parameter filters come first, in the fixed order role, name, status, year.
// Base filters follow in their original order, skipping any that are already
// present. When params is nil, base is returned as is.
func UnifyFilters(base []FilterSpec, params *Parameters) []FilterSpec {
	if params == nil {
		return base
	}

	out := make([]FilterSpec, 0, len(base)+4)
	if v := strings.TrimSpace(params.Role); v != "" {
		out = append(out, FilterSpec{Column: "role", Value: strings.ToLower(v), Operator: OpEq})
	}
	if v := strings.TrimSpace(params.Name); v != "" {
		out = append(out, FilterSpec{Column: "name", Value: strings.ToLower(v), Operator: OpLike})
	}
	if v := strings.TrimSpace(params.Status); v != "" {
		out = append(out, FilterSpec{Column: "status", Value: strings.ToLower(v), Operator: OpEq})
	}
	if params.Year != 0 {
		out = append(out, FilterSpec{Column: "year", Value: params.Year, Operator: OpEq})
	}

	for _, f := range base {
		if !containsFilter(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func containsFilter(list []FilterSpec, f FilterSpec) bool {
	for _, existing := range list {
		if reflect.DeepEqual(existing, f) {
			return true
		}
	}
	return false
}
