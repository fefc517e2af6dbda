// Package services holds the use cases exposed by the HTTP API and the
// seeder, on top of the typed queries of internal/storage.
package services

import (
	"context"

	"budget/internal/query"
)

// Service is the read side shared by every entity.
type Service[T any] struct {
	queries *query.Queries[T]
}

func NewService[T any](q *query.Queries[T]) *Service[T] {
	return &Service[T]{queries: q}
}

// List returns the rows matching params, paginated when params asks for it.
func (s *Service[T]) List(ctx context.Context, params *query.Parameters, withDeleted bool) (query.ListResult[T], error) {
	return s.queries.List(ctx, query.Options{
		Parameters:  params,
		WithDeleted: withDeleted,
	})
}

// FindOne looks a row up by id or, for non UUID values, by name.
func (s *Service[T]) FindOne(ctx context.Context, value string) (*T, error) {
	return s.queries.FindOne(ctx, query.FindOneOptions{Value: value})
}

// FindBy returns the first row whose column by equals value.
func (s *Service[T]) FindBy(ctx context.Context, by string, value any) (*T, error) {
	return s.queries.FindBy(ctx, query.FindByOptions{
		Search: query.SearchSpec{By: by, Value: value},
	})
}

// FindOneByOrder looks a row up by its order column, without completion.
func (s *Service[T]) FindOneByOrder(ctx context.Context, order int) (*T, error) {
	return s.queries.FindOneByOrder(ctx, query.FindOneByOrderOptions[T]{
		Order:    order,
		Complete: query.Bool(false),
	})
}
