// Package config loads CLI defaults from .dasha.yaml, DASHA_* environment
// variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/dasha/internal/period"
)

// EnvPrefix is the environment variable prefix, e.g. DASHA_DEPTH.
const EnvPrefix = "DASHA"

// Config holds the runtime defaults of the CLI.
type Config struct {
	// Depth is the default subdivision depth (0 = top level only).
	Depth int `mapstructure:"depth"`
	// HorizonYears is the default time horizon; 0 leaves it to the system's
	// ruler cycle.
	HorizonYears int64 `mapstructure:"horizon_years"`
	// MaxCycles bounds how many ruler cycles a tree may generate.
	MaxCycles int `mapstructure:"max_cycles"`
	// Format is the output format: text, json, yaml or toml.
	Format string `mapstructure:"format"`
	// CachePath is the SQLite timeline cache; empty disables caching.
	CachePath string `mapstructure:"cache_path"`
	// SystemsDir holds custom CUE system definitions; empty disables them.
	SystemsDir string `mapstructure:"systems_dir"`
	Verbose    bool   `mapstructure:"verbose"`
}

// New creates a viper instance reading cfgFile, or .dasha.yaml from the
// working directory then the home directory when cfgFile is empty.
// A missing default config file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".dasha")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	v.SetDefault("depth", 2)
	v.SetDefault("horizon_years", 0)
	v.SetDefault("max_cycles", period.DefaultMaxCycles)
	v.SetDefault("format", "text")
	v.SetDefault("cache_path", "")
	v.SetDefault("systems_dir", "")
	v.SetDefault("verbose", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("depth must be >= 0, got %d", c.Depth)
	}
	if c.HorizonYears < 0 {
		return fmt.Errorf("horizon_years must be >= 0, got %d", c.HorizonYears)
	}
	if c.MaxCycles <= 0 {
		return fmt.Errorf("max_cycles must be positive, got %d", c.MaxCycles)
	}
	switch c.Format {
	case "text", "json", "yaml", "toml":
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", c.Format)
	}
	return nil
}
