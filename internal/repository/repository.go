// Package repository joins the Giphy client and the favorites store behind
// the state.Repository interface.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/gifbox/internal/favorites"
	"github.com/five82/gifbox/internal/gif"
	"github.com/five82/gifbox/internal/giphy"
	"github.com/five82/gifbox/internal/state"
)

// FavoritesStore is the part of favorites.Store the repository needs.
type FavoritesStore interface {
	List() []gif.Item
	Set(ctx context.Context, item gif.Item) error
	Subscribe() (*favorites.Subscription, error)
}

// Repository fetches GIFs from Giphy and flags them against the local
// favorites list.
type Repository struct {
	fetcher   giphy.Fetcher
	favorites FavoritesStore
	log       zerolog.Logger
}

var _ state.Repository = (*Repository)(nil)

// New returns a Repository. Both collaborators are required.
func New(fetcher giphy.Fetcher, store FavoritesStore, log zerolog.Logger) (*Repository, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("repository: nil fetcher")
	}
	if store == nil {
		return nil, fmt.Errorf("repository: nil favorites store")
	}
	return &Repository{fetcher: fetcher, favorites: store, log: log}, nil
}

// FetchTrending returns one page of trending GIFs.
func (r *Repository) FetchTrending(ctx context.Context, page gif.Page) ([]gif.Item, error) {
	start := time.Now()
	items, err := r.fetcher.Trending(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}
	r.logFetch(ctx, "trending", "", page, len(items), start)
	return gif.ApplyFavorites(items, r.favorites.List()), nil
}

// Search returns one page of GIFs matching query.
func (r *Repository) Search(ctx context.Context, query string, page gif.Page) ([]gif.Item, error) {
	start := time.Now()
	items, err := r.fetcher.Search(ctx, query, page)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	r.logFetch(ctx, "search", query, page, len(items), start)
	return gif.ApplyFavorites(items, r.favorites.List()), nil
}

// ObserveFavorites opens a live favorites subscription.
func (r *Repository) ObserveFavorites(ctx context.Context) (state.FavoritesStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub, err := r.favorites.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("subscribe favorites: %w", err)
	}
	return sub, nil
}

// SetFavorite persists item's favorite flag.
func (r *Repository) SetFavorite(ctx context.Context, item gif.Item) error {
	if err := r.favorites.Set(ctx, item); err != nil {
		return fmt.Errorf("set favorite %s: %w", item.ID, err)
	}
	r.log.Info().Str("id", item.ID).Str("title", item.DisplayTitle()).Bool("favorite", item.Favorite).Msg("favorite saved")
	return nil
}

func (r *Repository) logFetch(ctx context.Context, kind, query string, page gif.Page, n int, start time.Time) {
	r.log.Debug().
		Str("request_id", giphy.RequestID(ctx)).
		Str("kind", kind).
		Str("query", query).
		Int("offset", page.Offset).
		Int("limit", page.Limit).
		Int("count", n).
		Dur("took", time.Since(start)).
		Msg("giphy fetch")
}
