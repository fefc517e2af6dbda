package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Predicate is a compiled condition with its named bind parameters.
// Placeholders use the ":name" form.
type Predicate struct {
	Fragment string
	Binds    map[string]any
}

// Compile turns a lookup into a condition on alias.
//
// The column reference is alias.By unless relation is true, in which case By
// is used as given (it is expected to be qualified already). LIKE lookups are
// case-insensitive substring matches. Every call binds exactly one parameter,
// keyed by By.
func Compile(alias string, s SearchSpec, relation bool) Predicate {
	ref := QuoteIdent(alias) + "." + QuoteIdent(s.By)
	if relation {
		ref = quotePath(s.By)
	}

	op := s.Operator.orDefault()
	binds := map[string]any{s.By: s.Value}

	switch op {
	case OpLike:
		binds[s.By] = "%" + strings.ToLower(fmt.Sprint(s.Value)) + "%"
		return Predicate{Fragment: fmt.Sprintf("LOWER(%s) LIKE :%s", ref, s.By), Binds: binds}
	case OpIn, OpNotIn:
		// nothing is in an empty list
		if isEmptyList(s.Value) {
			if op == OpIn {
				return Predicate{Fragment: "1=0", Binds: binds}
			}
			return Predicate{Fragment: "1=1", Binds: binds}
		}
		// parenthesised so slice values can be expanded by the session
		return Predicate{Fragment: fmt.Sprintf("%s %s (:%s)", ref, op, s.By), Binds: binds}
	case OpIsNull, OpIsNotNull:
		return Predicate{Fragment: fmt.Sprintf("%s %s", ref, op), Binds: binds}
	default:
		return Predicate{Fragment: fmt.Sprintf("%s %s :%s", ref, op, s.By), Binds: binds}
	}
}

func isEmptyList(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// CompileFilter compiles a FilterSpec.
func CompileFilter(alias string, f FilterSpec) Predicate {
	return Compile(alias, SearchSpec{By: f.Column, Value: f.Value, Operator: f.Operator}, f.IsRelationColumn)
}

// QuoteIdent quotes an identifier for SQL: na"me -> "na""me".
func QuoteIdent(s string) string {
	if s == "" {
		return `""`
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// quotePath quotes every segment of a dotted reference.
func quotePath(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}
