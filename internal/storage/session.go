package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"budget/internal/query"
)

type join struct {
	alias  string
	prefix string // column label prefix, e.g. "bill.user"
	table  Table
	on     string
}

type order struct {
	column string
	dir    query.Direction
}

// Session builds one SELECT over a registered table. Errors from the
// building calls are kept and returned by the first terminal call.
type Session[T any] struct {
	db       sqlx.QueryerContext
	registry *Registry
	alias    string
	table    Table

	orders      []order
	withDeleted bool
	joins       []join
	where       squirrel.And
	offset      uint64
	limit       uint64
	err         error
}

var _ query.Session[struct{}] = (*Session[struct{}])(nil)

func newSession[T any](db sqlx.QueryerContext, registry *Registry, alias string) *Session[T] {
	s := &Session[T]{db: db, registry: registry, alias: alias, where: squirrel.And{}}
	s.table, s.err = registry.Table(alias)
	return s
}

func (s *Session[T]) OrderBy(column string, dir query.Direction) {
	s.orders = append(s.orders, order{column: column, dir: dir})
}

func (s *Session[T]) IncludeDeleted() {
	s.withDeleted = true
}

// JoinRelation joins the relation named by path ("parent.relation") as alias.
// The parent must be the root alias or an alias joined earlier.
func (s *Session[T]) JoinRelation(path, alias string) {
	if s.err != nil {
		return
	}
	parentAlias, name, ok := strings.Cut(path, ".")
	if !ok {
		s.err = fmt.Errorf("join %q: expected parent.relation", path)
		return
	}
	parent, prefix, found := s.lookupAlias(parentAlias)
	if !found {
		s.err = fmt.Errorf("join %q: unknown alias %q", path, parentAlias)
		return
	}
	rel, ok := parent.Relations[name]
	if !ok {
		s.err = fmt.Errorf("join %q: %s has no relation %q", path, parent.Alias, name)
		return
	}
	target, err := s.registry.Table(rel.Target)
	if err != nil {
		s.err = fmt.Errorf("join %q: %w", path, err)
		return
	}
	if prefix != "" {
		prefix += "."
	}
	s.joins = append(s.joins, join{
		alias:  alias,
		prefix: prefix + name,
		table:  target,
		on: fmt.Sprintf("%s.%s = %s.%s",
			query.QuoteIdent(alias), query.QuoteIdent("id"),
			query.QuoteIdent(parentAlias), query.QuoteIdent(rel.ForeignKey)),
	})
}

// AddCondition binds a fragment written with :name placeholders. Slice
// values are expanded for IN lists.
func (s *Session[T]) AddCondition(fragment string, binds map[string]any) {
	if s.err != nil {
		return
	}
	q, args, err := sqlx.Named(fragment, binds)
	if err != nil {
		s.err = fmt.Errorf("condition %q: %w", fragment, err)
		return
	}
	q, args, err = sqlx.In(q, args...)
	if err != nil {
		s.err = fmt.Errorf("condition %q: %w", fragment, err)
		return
	}
	s.where = append(s.where, squirrel.Expr(q, args...))
}

func (s *Session[T]) Skip(n int) {
	s.offset = uint64(max(n, 0))
}

func (s *Session[T]) Take(n int) {
	s.limit = uint64(max(n, 0))
}

func (s *Session[T]) GetOne(ctx context.Context) (*T, error) {
	b, err := s.selectBuilder()
	if err != nil {
		return nil, err
	}
	rows, err := s.selectRows(ctx, b.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Session[T]) GetMany(ctx context.Context) ([]T, error) {
	b, err := s.selectBuilder()
	if err != nil {
		return nil, err
	}
	return s.selectRows(ctx, s.window(b))
}

func (s *Session[T]) GetManyAndCount(ctx context.Context) ([]T, int, error) {
	b, err := s.selectBuilder()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.selectRows(ctx, s.window(b))
	if err != nil {
		return nil, 0, err
	}

	sqlStr, args, err := s.from(squirrel.Select("COUNT(*)")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s: %w", s.alias, err)
	}
	var total int
	if err := sqlx.GetContext(ctx, s.db, &total, sqlStr, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.alias, err)
	}
	return rows, total, nil
}

func (s *Session[T]) selectRows(ctx context.Context, b squirrel.SelectBuilder) ([]T, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", s.alias, err)
	}
	rows := []T{}
	if err := sqlx.SelectContext(ctx, s.db, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", s.alias, err)
	}
	return rows, nil
}

func (s *Session[T]) window(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	if s.limit > 0 {
		b = b.Limit(s.limit)
	}
	if s.offset > 0 {
		if s.limit == 0 {
			// SQLite needs a LIMIT before OFFSET
			b = b.Limit(1<<63 - 1)
		}
		b = b.Offset(s.offset)
	}
	return b
}

func (s *Session[T]) selectBuilder() (squirrel.SelectBuilder, error) {
	if s.err != nil {
		return squirrel.SelectBuilder{}, s.err
	}

	cols := make([]string, 0, len(s.table.Columns))
	for _, c := range s.table.Columns {
		cols = append(cols, fmt.Sprintf("%s.%s AS %s",
			query.QuoteIdent(s.alias), query.QuoteIdent(c), query.QuoteIdent(c)))
	}
	for _, j := range s.joins {
		for _, c := range j.table.Columns {
			cols = append(cols, fmt.Sprintf("%s.%s AS %s",
				query.QuoteIdent(j.alias), query.QuoteIdent(c), query.QuoteIdent(j.prefix+"."+c)))
		}
	}

	b := s.from(squirrel.Select(cols...))
	for _, o := range s.orders {
		expr, err := s.orderExpr(o)
		if err != nil {
			return squirrel.SelectBuilder{}, err
		}
		b = b.OrderBy(expr)
	}
	return b, nil
}

// from adds the FROM, JOIN and WHERE clauses shared by the select and the
// count query.
func (s *Session[T]) from(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	b = b.From(query.QuoteIdent(s.table.Name) + " AS " + query.QuoteIdent(s.alias)).
		PlaceholderFormat(squirrel.Question)

	for _, j := range s.joins {
		on := j.on
		if j.table.SoftDelete && !s.withDeleted {
			on += fmt.Sprintf(" AND %s.%s IS NULL", query.QuoteIdent(j.alias), query.QuoteIdent("deleted_at"))
		}
		b = b.InnerJoin(fmt.Sprintf("%s AS %s ON %s", query.QuoteIdent(j.table.Name), query.QuoteIdent(j.alias), on))
	}

	where := squirrel.And{}
	if s.table.SoftDelete && !s.withDeleted {
		where = append(where, squirrel.Expr(fmt.Sprintf("%s.%s IS NULL", query.QuoteIdent(s.alias), query.QuoteIdent("deleted_at"))))
	}
	where = append(where, s.where...)
	if len(where) > 0 {
		b = b.Where(where)
	}
	return b
}

// orderExpr checks an "alias.column" ordering against the registry so that
// request parameters never reach the SQL text unquoted.
func (s *Session[T]) orderExpr(o order) (string, error) {
	alias, col, ok := strings.Cut(o.column, ".")
	if !ok {
		return "", fmt.Errorf("order %q: expected alias.column: %w", o.column, ErrUnknownColumn)
	}
	t, _, found := s.lookupAlias(alias)
	if !found {
		return "", fmt.Errorf("order %q: unknown alias %q: %w", o.column, alias, ErrUnknownColumn)
	}
	if !t.HasColumn(col) {
		return "", fmt.Errorf("order %q: %s has no column %q: %w", o.column, t.Alias, col, ErrUnknownColumn)
	}
	dir := query.Asc
	if o.dir == query.Desc {
		dir = query.Desc
	}
	return fmt.Sprintf("%s.%s %s", query.QuoteIdent(alias), query.QuoteIdent(col), dir), nil
}

func (s *Session[T]) lookupAlias(alias string) (Table, string, bool) {
	if alias == s.alias {
		return s.table, "", true
	}
	for _, j := range s.joins {
		if j.alias == alias {
			return j.table, j.prefix, true
		}
	}
	return Table{}, "", false
}

// Source opens sessions of T on a database handle or a transaction.
type Source[T any] struct {
	db       sqlx.QueryerContext
	registry *Registry
}

func NewSource[T any](db sqlx.QueryerContext, registry *Registry) *Source[T] {
	return &Source[T]{db: db, registry: registry}
}

func (s *Source[T]) NewSession(alias string) query.Session[T] {
	return newSession[T](s.db, s.registry, alias)
}
