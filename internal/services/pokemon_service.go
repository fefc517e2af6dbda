package services

import (
	"context"

	"budget/internal/core"
	"budget/internal/pokeapi"
	"budget/internal/query"
)

// PokemonService reads the local pokedex and completes entries from
// PokeAPI on request.
type PokemonService struct {
	*Service[core.Pokemon]

	fetcher pokeapi.Fetcher
}

// NewPokemonService builds the service. A nil fetcher disables completion.
func NewPokemonService(q *query.Queries[core.Pokemon], fetcher pokeapi.Fetcher) *PokemonService {
	return &PokemonService{Service: NewService(q), fetcher: fetcher}
}

// FindOneByOrder returns the pokemon stored with order. When complete is
// set and a fetcher is configured, the remote details replace the stored
// ones in the returned copy.
func (s *PokemonService) FindOneByOrder(ctx context.Context, order int, complete bool) (*core.Pokemon, error) {
	opts := query.FindOneByOrderOptions[core.Pokemon]{
		Order:      order,
		Complete:   query.Bool(complete),
		Completing: pokeapi.Complete,
	}
	if s.fetcher != nil {
		opts.Response = s.fetcher
	}
	return s.queries.FindOneByOrder(ctx, opts)
}
