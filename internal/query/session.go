package query

import "context"

// Session is a mutable query-building session over one root entity.
// It is owned by a single Assembler and discarded after its terminal call.
type Session[T any] interface {
	OrderBy(column string, dir Direction)
	IncludeDeleted()
	// JoinRelation joins path ("parent.relation") under the given alias.
	JoinRelation(path, alias string)
	AddCondition(fragment string, binds map[string]any)
	Skip(n int)
	Take(n int)

	GetOne(ctx context.Context) (*T, error)
	GetMany(ctx context.Context) ([]T, error)
	GetManyAndCount(ctx context.Context) ([]T, int, error)
}

// Source creates sessions rooted at an alias.
type Source[T any] interface {
	NewSession(alias string) Session[T]
}
