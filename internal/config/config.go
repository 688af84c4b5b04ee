// Package config loads service settings with Viper: defaults, an
// optional .env file in the working directory, and environment
// variables, in increasing priority.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings for the payment service.
type Config struct {
	Port        string `mapstructure:"PORT"`
	DBPath      string `mapstructure:"DB_PATH"`
	StoreSlot   string `mapstructure:"STORE_SLOT"`
	CORSOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// ProgressDelaysMS is a comma-separated list of millisecond offsets
	// at which the delivery simulation advances a confirmed payment.
	ProgressDelaysMS string `mapstructure:"PROGRESS_DELAYS_MS"`
}

// LoadConfig reads configuration from the given directory's optional
// .env file and from the environment.
func LoadConfig(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_PATH", "meridian.db")
	viper.SetDefault("STORE_SLOT", "meridian-store")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("PROGRESS_DELAYS_MS", "1200,3500,6000")

	for _, key := range []string{"PORT", "DB_PATH", "STORE_SLOT", "CORS_ALLOWED_ORIGINS", "PROGRESS_DELAYS_MS"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Missing .env is fine; a malformed one is not.
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// ProgressDelays parses ProgressDelaysMS into durations. Malformed or
// non-positive entries invalidate the whole list and an error is
// returned so the caller can fall back to the defaults.
func (c Config) ProgressDelays() ([]time.Duration, error) {
	parts := strings.Split(c.ProgressDelaysMS, ",")
	delays := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		ms, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse progress delay %q: %w", part, err)
		}
		if ms <= 0 {
			return nil, fmt.Errorf("progress delay %q must be positive", part)
		}
		delays = append(delays, time.Duration(ms)*time.Millisecond)
	}
	return delays, nil
}

// AllowedOrigins splits the configured CORS origin list.
func (c Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
