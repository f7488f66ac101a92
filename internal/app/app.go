package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/five82/gifbox/internal/config"
	"github.com/five82/gifbox/internal/favorites"
	"github.com/five82/gifbox/internal/giphy"
	"github.com/five82/gifbox/internal/logging"
	"github.com/five82/gifbox/internal/prefs"
	"github.com/five82/gifbox/internal/repository"
	"github.com/five82/gifbox/internal/state"
	"github.com/five82/gifbox/internal/ui"
)

// Options configure the gifbox application.
type Options struct {
	ConfigPath string          // empty uses ~/.config/gifbox/config.toml
	PrefsPath  string          // empty uses ~/.config/gifbox/prefs.toml
	Base       config.Config   // flag values; start from config.DefaultConfig
	Changed    map[string]bool // flags set explicitly on the command line
	Query      string          // initial search instead of trending
	Version    string
}

// Run boots the gifbox TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath, opts.Base, opts.Changed)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = logger.Close() }()

	log := logger.With().Str("component", "app").Logger()
	redacted := cfg.Redacted()
	log.Info().
		Str("version", opts.Version).
		Str("api_url", redacted.APIURL).
		Str("rating", redacted.Rating).
		Int("page_size", redacted.PageSize).
		Str("favorites", redacted.FavoritesPath).
		Dur("refresh_every", redacted.RefreshEvery).
		Str("resubscribe", redacted.Resubscribe).
		Msg("gifbox starting")

	favs, err := favorites.Open(cfg.FavoritesPath, favorites.Options{
		Logger: logger.With().Str("component", "favorites").Logger(),
	})
	if err != nil {
		return fmt.Errorf("open favorites: %w", err)
	}
	defer func() {
		if cerr := favs.Close(); cerr != nil && !errors.Is(cerr, favorites.ErrClosed) {
			log.Warn().Err(cerr).Msg("close favorites")
		}
	}()

	client, err := giphy.NewClient(giphy.Options{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		Rating:  cfg.Rating,
		Lang:    cfg.Lang,
	})
	if err != nil {
		return fmt.Errorf("init giphy client: %w", err)
	}

	repo, err := repository.New(client, favs, logger.With().Str("component", "repository").Logger())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	// Pick up edits made by other gifbox instances.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if werr := favs.Watch(runCtx); werr != nil {
			log.Warn().Err(werr).Msg("favorites watcher stopped")
		}
	}()

	query := strings.TrimSpace(opts.Query)
	coord := state.New(runCtx, repo, state.Options{
		Logger:          logger.With().Str("component", "state").Logger(),
		PageSize:        cfg.PageSize,
		Resubscribe:     cfg.ResubscribePolicy(),
		SkipInitialLoad: query != "",
	})
	defer coord.Close()
	if query != "" {
		coord.Search(query)
	}

	StartRefresher(runCtx, coord, cfg.RefreshEvery, log)

	userPrefs := prefs.Load(opts.PrefsPath)
	lastQuery := userPrefs.LastQuery
	if query != "" {
		lastQuery = query
	}

	err = ui.Run(ui.Options{
		Controller: coord,
		Logger:     logger.With().Str("component", "ui").Logger(),
		LogPath:    logger.Path,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		LastQuery:  lastQuery,
	})
	if err != nil {
		log.Error().Err(err).Msg("ui exited with error")
		return fmt.Errorf("run ui: %w", err)
	}
	log.Info().Msg("gifbox stopped")
	return nil
}
