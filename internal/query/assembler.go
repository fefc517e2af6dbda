package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errNotInitialized = errors.New("query: assembler used before Initialize")

// Config is captured when an Assembler is built and never changes afterwards.
type Config struct {
	Alias         string
	Filters       []FilterSpec
	Relations     []string
	DefaultAsc    string
	Parameters    *Parameters
	WithDeleted   bool
	WithRelations bool
	Search        *SearchSpec
}

// Assembler applies a Config to a Session in a fixed order and runs the
// terminal lookups. Build one per logical query.
type Assembler[T any] struct {
	cfg         Config
	session     Session[T]
	initialized bool
}

// NewAssembler returns an assembler for session. Call Initialize before
// any terminal operation.
func NewAssembler[T any](session Session[T], cfg Config) *Assembler[T] {
	cfg.Filters = append([]FilterSpec(nil), cfg.Filters...)
	cfg.Relations = append([]string(nil), cfg.Relations...)
	if cfg.Parameters != nil {
		p := *cfg.Parameters
		cfg.Parameters = &p
	}
	if cfg.Search != nil {
		s := *cfg.Search
		cfg.Search = &s
	}
	return &Assembler[T]{cfg: cfg, session: session}
}

// Initialize applies ordering, deletion visibility, relations, filters and
// the search condition, in that order, and returns the prepared session.
func (a *Assembler[T]) Initialize() (Session[T], error) {
	if a.initialized {
		return a.session, nil
	}
	if err := a.applyOrdering(); err != nil {
		return nil, err
	}
	a.applyDeletionVisibility()
	a.applyRelations()
	a.applyFilters()
	a.applySearch()
	a.initialized = true
	return a.session, nil
}

func (a *Assembler[T]) applyOrdering() error {
	p := a.cfg.Parameters
	var asc, desc string
	if p != nil {
		asc, desc = strings.TrimSpace(p.Asc), strings.TrimSpace(p.Desc)
	}

	switch {
	case asc != "" && desc != "":
		return &ConflictError{Alias: a.cfg.Alias, Params: []string{asc, desc}}
	case asc != "":
		a.session.OrderBy(a.column(asc), Asc)
	case desc != "":
		a.session.OrderBy(a.column(desc), Desc)
	case a.cfg.DefaultAsc != "":
		a.session.OrderBy(a.column(a.cfg.DefaultAsc), Asc)
	}
	return nil
}

func (a *Assembler[T]) applyDeletionVisibility() {
	if a.cfg.WithDeleted {
		a.session.IncludeDeleted()
	}
}

// applyRelations joins every relation path. A dotted path "a.b.c" joins a
// under the root alias, then b under "a" as "a_b", then c under "a_b" as
// "a_b_c". Each computed alias is joined once.
func (a *Assembler[T]) applyRelations() {
	if !a.cfg.WithRelations {
		return
	}
	joined := make(map[string]struct{})
	for _, path := range a.cfg.Relations {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		parent := a.cfg.Alias
		segments := strings.Split(path, ".")
		for i, segment := range segments {
			alias := strings.Join(segments[:i+1], "_")
			if _, ok := joined[alias]; !ok {
				a.session.JoinRelation(parent+"."+segment, alias)
				joined[alias] = struct{}{}
			}
			parent = alias
		}
	}
}

func (a *Assembler[T]) applyFilters() {
	for _, f := range UnifyFilters(a.cfg.Filters, a.cfg.Parameters) {
		p := CompileFilter(a.cfg.Alias, f)
		a.session.AddCondition(p.Fragment, p.Binds)
	}
}

func (a *Assembler[T]) applySearch() {
	if a.cfg.Search == nil {
		return
	}
	p := Compile(a.cfg.Alias, *a.cfg.Search, false)
	a.session.AddCondition(p.Fragment, p.Binds)
}

func (a *Assembler[T]) column(name string) string {
	return a.cfg.Alias + "." + name
}

// List returns every matching row, or one page of them when the parameters
// carry a page or a limit.
func (a *Assembler[T]) List(ctx context.Context) (ListResult[T], error) {
	if !a.initialized {
		return ListResult[T]{}, errNotInitialized
	}

	p := a.cfg.Parameters
	if !p.Paginated() {
		rows, err := a.session.GetMany(ctx)
		if err != nil {
			return ListResult[T]{}, fmt.Errorf("list %s: %w", a.cfg.Alias, err)
		}
		if rows == nil {
			rows = []T{}
		}
		return ListResult[T]{Items: rows}, nil
	}

	page := max(p.Page, 1)
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	a.session.Skip((page - 1) * limit)
	a.session.Take(limit)
	rows, total, err := a.session.GetManyAndCount(ctx)
	if err != nil {
		return ListResult[T]{}, fmt.Errorf("list %s page %d: %w", a.cfg.Alias, page, err)
	}

	result := NewPaginatedResult(rows, page, limit, total)
	return ListResult[T]{Paginated: &result}, nil
}

// FindBy returns the first matching row. With withThrow, a miss is a
// *NotFoundError; otherwise it is (nil, nil).
func (a *Assembler[T]) FindBy(ctx context.Context, withThrow bool) (*T, error) {
	if !a.initialized {
		return nil, errNotInitialized
	}

	row, err := a.session.GetOne(ctx)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", a.cfg.Alias, err)
	}
	if row == nil && withThrow {
		return nil, &NotFoundError{Alias: a.cfg.Alias}
	}
	return row, nil
}
