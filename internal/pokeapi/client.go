// Package pokeapi fetches pokemon details from PokeAPI and uses them to
// complete the rows stored locally.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/log"
)

var ErrNotFound = errors.New("pokeapi: pokemon not found")

// StatusError is returned for any non-2xx answer other than 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi: unexpected status %d: %s", e.Code, e.Body)
}

// Pokemon is the subset of the PokeAPI pokemon resource used here.
type Pokemon struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Height int      `json:"height"`
	Weight int      `json:"weight"`
	Types  []string `json:"types"`
	Sprite string   `json:"sprite"`
}

// wire shape of GET /pokemon/{id}
type pokemonResource struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

func (r pokemonResource) toPokemon() *Pokemon {
	p := &Pokemon{
		ID:     r.ID,
		Name:   r.Name,
		Height: r.Height,
		Weight: r.Weight,
		Sprite: r.Sprites.FrontDefault,
		Types:  make([]string, 0, len(r.Types)),
	}
	for _, t := range r.Types {
		p.Types = append(p.Types, t.Type.Name)
	}
	return p
}

// Fetcher looks a pokemon up by its pokedex number.
type Fetcher interface {
	Pokemon(ctx context.Context, order int) (*Pokemon, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache[*Pokemon]
	logger  *log.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient returns a client for baseURL (e.g. https://pokeapi.co/api/v2).
// A nil cache disables caching.
func NewClient(baseURL string, timeout time.Duration, c cache.Cache[*Pokemon], logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   c,
		logger:  logger.WithComponent(log.ComponentPokeAPI),
	}
}

// Pokemon returns the pokemon with pokedex number order, from the cache
// when possible.
func (c *Client) Pokemon(ctx context.Context, order int) (*Pokemon, error) {
	if order <= 0 {
		return nil, fmt.Errorf("pokeapi: invalid order %d", order)
	}
	if c.cache == nil {
		return c.fetch(ctx, order)
	}
	return c.cache.GetOrLoad(ctx, strconv.Itoa(order), func(ctx context.Context) (*Pokemon, error) {
		return c.fetch(ctx, order)
	})
}

func (c *Client) fetch(ctx context.Context, order int) (*Pokemon, error) {
	url := fmt.Sprintf("%s/pokemon/%d", c.baseURL, order)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "PokeAPI request",
		log.FieldURL, url,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("order %d: %w", order, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var res pokemonResource
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode pokemon %d: %w", order, err)
	}
	return res.toPokemon(), nil
}

// Complete fills the remote details of row using response, which must be a
// Fetcher. The stored row is not modified; a completed copy is returned.
// A pokemon PokeAPI does not know is returned as stored.
func Complete(ctx context.Context, row *core.Pokemon, response any) (*core.Pokemon, error) {
	fetcher, ok := response.(Fetcher)
	if !ok {
		return nil, fmt.Errorf("pokeapi: cannot complete from %T", response)
	}
	out := *row
	remote, err := fetcher.Pokemon(ctx, row.Order)
	if errors.Is(err, ErrNotFound) {
		return &out, nil
	}
	if err != nil {
		return nil, err
	}

	if len(remote.Types) > 0 {
		out.Types = append(core.StringList(nil), remote.Types...)
	}
	if remote.Sprite != "" {
		out.Sprite = remote.Sprite
	}
	if remote.Height > 0 {
		out.Height = remote.Height
	}
	if remote.Weight > 0 {
		out.Weight = remote.Weight
	}
	return &out, nil
}
