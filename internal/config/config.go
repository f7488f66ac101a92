package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/five82/gifbox/internal/giphy"
	"github.com/five82/gifbox/internal/state"
)

// Config holds everything gifbox needs at startup.
type Config struct {
	APIKey        string
	APIURL        string
	Rating        string
	Lang          string
	PageSize      int
	FavoritesPath string
	LogFile       string // "-" logs to stderr
	LogLevel      string
	RefreshEvery  time.Duration // zero disables periodic refresh
	Resubscribe   string        // "backoff" or "never"
}

const (
	defaultConfigPath    = "~/.config/gifbox/config.toml"
	defaultFavoritesPath = "~/.local/share/gifbox/favorites.toml"
	defaultLogFile       = "~/.local/state/gifbox/gifbox.log"
	defaultPageSize      = 25
	maxPageSize          = 50
	defaultLogLevel      = "info"
	defaultResubscribe   = "backoff"

	// StderrLog is the LogFile value that sends logs to stderr.
	StderrLog = "-"
)

var validRatings = map[string]bool{"g": true, "pg": true, "pg-13": true, "r": true}

// ErrMissingAPIKey is returned by Validate when no API key was configured.
var ErrMissingAPIKey = errors.New("api key is required (set api_key, GIFBOX_API_KEY or --api-key)")

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		APIURL:        giphy.DefaultBaseURL,
		Rating:        giphy.DefaultRating,
		Lang:          giphy.DefaultLang,
		PageSize:      defaultPageSize,
		FavoritesPath: defaultFavoritesPath,
		LogFile:       defaultLogFile,
		LogLevel:      defaultLogLevel,
		Resubscribe:   defaultResubscribe,
	}
}

// FileConfig mirrors Config with TOML-friendly types.
type FileConfig struct {
	APIKey        string `toml:"api_key"`
	APIURL        string `toml:"api_url"`
	Rating        string `toml:"rating"`
	Lang          string `toml:"lang"`
	PageSize      int    `toml:"page_size"`
	FavoritesPath string `toml:"favorites_path"`
	LogFile       string `toml:"log_file"`
	LogLevel      string `toml:"log_level"`
	RefreshEvery  string `toml:"refresh_every"`
	Resubscribe   string `toml:"resubscribe"`
}

// Load layers the TOML file at path (default ~/.config/gifbox/config.toml;
// a missing file is not an error) and GIFBOX_* environment variables over
// base. Fields whose flag name is in changed keep their base value, so flags
// bound to base win over both. The result is not validated.
func Load(path string, base Config, changed map[string]bool) (Config, error) {
	cfg := base

	fc, found, err := LoadFileConfig(path)
	if err != nil {
		return Config{}, err
	}
	if found {
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFileConfig reads the TOML file at path. found is false when the file
// does not exist.
func LoadFileConfig(path string) (fc FileConfig, found bool, err error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return FileConfig{}, false, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return FileConfig{}, false, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &fc); err != nil {
		return FileConfig{}, false, fmt.Errorf("parse config: %w", err)
	}
	return fc, true, nil
}

// ApplyFileConfig copies non-empty file values into cfg, skipping fields
// whose flag was set explicitly.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("api-url", fc.APIURL, &cfg.APIURL)
	s.setString("rating", fc.Rating, &cfg.Rating)
	s.setString("lang", fc.Lang, &cfg.Lang)
	s.setString("favorites", fc.FavoritesPath, &cfg.FavoritesPath)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("resubscribe", fc.Resubscribe, &cfg.Resubscribe)
	s.setInt("page-size", fc.PageSize, &cfg.PageSize)

	return s.setDuration("refresh", fc.RefreshEvery, &cfg.RefreshEvery)
}

// Validate checks the configuration and normalizes derived values.
func (c *Config) Validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = giphy.DefaultBaseURL
	}

	c.Rating = strings.ToLower(strings.TrimSpace(c.Rating))
	if c.Rating == "" {
		c.Rating = giphy.DefaultRating
	}
	if !validRatings[c.Rating] {
		return fmt.Errorf("rating %q must be one of g, pg, pg-13, r", c.Rating)
	}

	c.Lang = strings.TrimSpace(c.Lang)
	if c.Lang == "" {
		c.Lang = giphy.DefaultLang
	}

	if c.PageSize <= 0 || c.PageSize > maxPageSize {
		return fmt.Errorf("page size %d must be between 1 and %d", c.PageSize, maxPageSize)
	}
	if c.RefreshEvery < 0 {
		return fmt.Errorf("refresh interval must not be negative")
	}

	c.Resubscribe = strings.ToLower(strings.TrimSpace(c.Resubscribe))
	if _, ok := state.ParseResubscribePolicy(c.Resubscribe); !ok {
		return fmt.Errorf("resubscribe %q must be backoff or never", c.Resubscribe)
	}
	if c.Resubscribe == "" {
		c.Resubscribe = defaultResubscribe
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	favorites, err := expandPath(orDefault(c.FavoritesPath, defaultFavoritesPath))
	if err != nil {
		return fmt.Errorf("favorites path: %w", err)
	}
	c.FavoritesPath = favorites

	if strings.TrimSpace(c.LogFile) != StderrLog {
		logFile, err := expandPath(orDefault(c.LogFile, defaultLogFile))
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		c.LogFile = logFile
	} else {
		c.LogFile = StderrLog
	}
	return nil
}

// ResubscribePolicy returns the parsed favorites resubscribe policy.
func (c Config) ResubscribePolicy() state.ResubscribePolicy {
	policy, _ := state.ParseResubscribePolicy(c.Resubscribe)
	return policy
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "*****"
	}
	return c
}

// DefaultConfigPath returns the expanded default config location.
func DefaultConfigPath() string {
	return mustExpand(defaultConfigPath)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
