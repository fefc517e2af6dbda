package query

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type (
	// Options are per-call overrides layered on the Queries defaults.
	Options struct {
		Filters       []FilterSpec
		Relations     []string // nil keeps the default relations
		DefaultAsc    string
		Parameters    *Parameters
		WithDeleted   bool
		SkipRelations bool
	}

	FindByOptions struct {
		Options
		Search    SearchSpec
		WithThrow *bool // default true
	}

	FindOneOptions struct {
		Options
		Value     string
		WithThrow *bool // default true
	}

	// CompleteFunc enriches a row found by order with an external response.
	CompleteFunc[T any] func(ctx context.Context, row *T, response any) (*T, error)

	FindOneByOrderOptions[T any] struct {
		Options
		Order      int
		Complete   *bool // default true
		Completing CompleteFunc[T]
		Response   any
		WithThrow  *bool // default true
	}
)

// Bool returns a pointer to v, for the optional flags above.
func Bool(v bool) *bool {
	return &v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Queries is the typed entry point for one entity. It keeps no state between
// calls: every method builds its own Assembler and Session.
type Queries[T any] struct {
	alias     string
	relations []string
	source    Source[T]
}

// NewQueries returns a facade for alias with the relations joined by default.
func NewQueries[T any](source Source[T], alias string, relations ...string) *Queries[T] {
	return &Queries[T]{
		alias:     alias,
		relations: relations,
		source:    source,
	}
}

// Alias returns the root alias of the queried entity.
func (q *Queries[T]) Alias() string {
	return q.alias
}

func (q *Queries[T]) assembler(opts Options, search *SearchSpec) *Assembler[T] {
	relations := q.relations
	if opts.Relations != nil {
		relations = opts.Relations
	}
	return NewAssembler(q.source.NewSession(q.alias), Config{
		Alias:         q.alias,
		Filters:       opts.Filters,
		Relations:     relations,
		DefaultAsc:    opts.DefaultAsc,
		Parameters:    opts.Parameters,
		WithDeleted:   opts.WithDeleted,
		WithRelations: !opts.SkipRelations,
		Search:        search,
	})
}

// List returns all matching rows, or a page of them when opts.Parameters
// carries a page or a limit.
func (q *Queries[T]) List(ctx context.Context, opts Options) (ListResult[T], error) {
	a := q.assembler(opts, nil)
	if _, err := a.Initialize(); err != nil {
		return ListResult[T]{}, err
	}
	return a.List(ctx)
}

// FindBy returns the first row matching opts.Search.
func (q *Queries[T]) FindBy(ctx context.Context, opts FindByOptions) (*T, error) {
	search := opts.Search
	a := q.assembler(opts.Options, &search)
	if _, err := a.Initialize(); err != nil {
		return nil, err
	}
	return a.FindBy(ctx, boolOr(opts.WithThrow, true))
}

// FindOne looks a row up by id when opts.Value is a UUID, by name otherwise.
func (q *Queries[T]) FindOne(ctx context.Context, opts FindOneOptions) (*T, error) {
	return q.FindBy(ctx, FindByOptions{
		Options:   opts.Options,
		Search:    SearchFor(opts.Value),
		WithThrow: opts.WithThrow,
	})
}

// SearchFor derives the lookup used by FindOne.
func SearchFor(value string) SearchSpec {
	if IsUUID(value) {
		return SearchSpec{By: "id", Value: value, Operator: OpEq}
	}
	return SearchSpec{By: "name", Value: strings.ToLower(value), Operator: OpLike}
}

// IsUUID reports whether v is a UUID in canonical 8-4-4-4-12 form.
func IsUUID(v string) bool {
	if len(v) != 36 {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

// FindOneByOrder looks a row up by its numeric order. When completion is
// enabled and both a callback and a response are given, the callback's
// result is returned instead of the stored row.
func (q *Queries[T]) FindOneByOrder(ctx context.Context, opts FindOneByOrderOptions[T]) (*T, error) {
	row, err := q.FindBy(ctx, FindByOptions{
		Options:   opts.Options,
		Search:    SearchSpec{By: "order", Value: opts.Order, Operator: OpEq},
		WithThrow: opts.WithThrow,
	})
	if err != nil {
		return nil, err
	}
	if row != nil && boolOr(opts.Complete, true) && opts.Completing != nil && opts.Response != nil {
		return opts.Completing(ctx, row, opts.Response)
	}
	return row, nil
}
