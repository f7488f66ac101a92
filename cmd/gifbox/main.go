package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/five82/gifbox/internal/app"
	"github.com/five82/gifbox/internal/config"
)

var longHelp = strings.TrimSpace(`
Browse trending GIFs, search Giphy, and keep favorites from your terminal.

Configuration is read from ~/.config/gifbox/config.toml, then GIFBOX_*
environment variables, then flags. An API key is required.
`)

var exampleUsage = strings.TrimSpace(`
  gifbox --api-key <key>
  gifbox --query "cats" --rating pg
  GIFBOX_API_KEY=<key> gifbox --log-file - --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()
	var cfgPath, prefsPath, query string

	root := &cobra.Command{
		Use:           "gifbox",
		Short:         "Terminal GIF browser for Giphy",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return app.Run(ctx, app.Options{
				ConfigPath: cfgPath,
				PrefsPath:  prefsPath,
				Base:       cfg,
				Changed:    changed,
				Query:      query,
				Version:    getVersion(),
			})
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", fmt.Sprintf("path to config file (default: %s)", config.DefaultConfigPath()))
	flags.StringVar(&prefsPath, "prefs", "", "path to prefs file (default: ~/.config/gifbox/prefs.toml)")
	flags.StringVar(&query, "query", "", "start with a search instead of trending")

	flags.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "Giphy API key")
	flags.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Giphy API base URL")
	flags.StringVar(&cfg.Rating, "rating", cfg.Rating, "content rating: g, pg, pg-13 or r")
	flags.StringVar(&cfg.Lang, "lang", cfg.Lang, "search language code")
	flags.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "GIFs per page (1-50)")
	flags.StringVar(&cfg.FavoritesPath, "favorites", cfg.FavoritesPath, "favorites file")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, `log file ("-" for stderr)`)
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.DurationVar(&cfg.RefreshEvery, "refresh", cfg.RefreshEvery, "refresh the current list every interval (0 disables)")
	flags.StringVar(&cfg.Resubscribe, "resubscribe", cfg.Resubscribe, "favorites resubscribe policy: backoff or never")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "gifbox: %v\n", err)
		return 1
	}
	return 0
}
