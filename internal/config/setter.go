package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// configSetter applies values unless the matching flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if strings.TrimSpace(value) == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setDuration accepts Go durations ("90s", "5m") and "0" to disable.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	value = strings.TrimSpace(value)
	if value == "" || s.changed[flag] {
		return nil
	}
	if value == "0" {
		*dst = 0
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// ApplyEnvConfig applies GIFBOX_* environment variables. Explicitly set
// flags still win. Returns an error if a variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-key", os.Getenv("GIFBOX_API_KEY"), &cfg.APIKey)
	s.setString("api-url", os.Getenv("GIFBOX_API_URL"), &cfg.APIURL)
	s.setString("rating", os.Getenv("GIFBOX_RATING"), &cfg.Rating)
	s.setString("log-level", os.Getenv("GIFBOX_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("favorites", os.Getenv("GIFBOX_FAVORITES"), &cfg.FavoritesPath)

	if err := s.setIntFromString("page-size", os.Getenv("GIFBOX_PAGE_SIZE"), &cfg.PageSize); err != nil {
		return err
	}
	return s.setDuration("refresh", os.Getenv("GIFBOX_REFRESH_EVERY"), &cfg.RefreshEvery)
}
