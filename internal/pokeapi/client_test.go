package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/log"
)

const pikachu = `{
	"id": 25,
	"name": "pikachu",
	"height": 4,
	"weight": 60,
	"types": [{"slot": 1, "type": {"name": "electric", "url": "x"}}],
	"sprites": {"front_default": "https://img/25.png"}
}`

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/api/v2/pokemon/25":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(pikachu))
		case "/api/v2/pokemon/500":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Pokemon(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c := NewClient(srv.URL+"/api/v2/", time.Second, cache.NewLRUCache[*Pokemon](8, time.Minute), log.Discard())

	p, err := c.Pokemon(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, &Pokemon{
		ID: 25, Name: "pikachu", Height: 4, Weight: 60,
		Types: []string{"electric"}, Sprite: "https://img/25.png",
	}, p)

	_, err = c.Pokemon(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second call served from cache")
}

func TestClient_PokemonErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c := NewClient(srv.URL+"/api/v2", time.Second, nil, log.Discard())

	_, err := c.Pokemon(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Pokemon(context.Background(), 500)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)

	_, err = c.Pokemon(context.Background(), 0)
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load(), "invalid order never reaches the server")
}

type stubFetcher struct {
	p   *Pokemon
	err error
}

func (s stubFetcher) Pokemon(context.Context, int) (*Pokemon, error) { return s.p, s.err }

func TestComplete(t *testing.T) {
	row := &core.Pokemon{ID: "p1", Name: "pikachu", Order: 25, Height: 1}

	got, err := Complete(context.Background(), row, stubFetcher{p: &Pokemon{
		Types: []string{"electric"}, Sprite: "s.png", Height: 4, Weight: 60,
	}})
	require.NoError(t, err)
	assert.Equal(t, core.StringList{"electric"}, got.Types)
	assert.Equal(t, "s.png", got.Sprite)
	assert.Equal(t, 4, got.Height)
	assert.Equal(t, 60, got.Weight)
	assert.Equal(t, "pikachu", got.Name)
	assert.Equal(t, 1, row.Height, "stored row untouched")

	stored, err := Complete(context.Background(), row, stubFetcher{err: ErrNotFound})
	require.NoError(t, err)
	assert.Equal(t, *row, *stored)
	assert.NotSame(t, row, stored)

	_, err = Complete(context.Background(), row, stubFetcher{err: &StatusError{Code: 502}})
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)

	_, err = Complete(context.Background(), row, "not a fetcher")
	assert.Error(t, err)
}
