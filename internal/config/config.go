// Package config loads and persists CLI configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDirName  = ".allegro-cli"
	configFileName = "config.yaml"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36"

// Config captures all persisted and environment-provided settings.
type Config struct {
	Cookies      string     `mapstructure:"cookies"`
	EdgeBaseURL  string     `mapstructure:"edge_base_url"`
	SolverURL    string     `mapstructure:"solver_url"`
	OutputFormat string     `mapstructure:"output_format"`
	UserAgent    string     `mapstructure:"user_agent"`
	HTTP         HTTPConfig `mapstructure:"http"`
}

// HTTPConfig holds the fixed, tier-specific timeout budgets.
type HTTPConfig struct {
	TimeoutSeconds       int     `mapstructure:"timeout_seconds"`
	SolverTimeoutSeconds int     `mapstructure:"solver_timeout_seconds"`
	LazyTimeoutSeconds   int     `mapstructure:"lazy_timeout_seconds"`
	HostQPS              float64 `mapstructure:"host_qps"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load builds a Config from the given file (or the default location when
// path is empty) plus ALLEGRO_* environment overrides. A missing file is
// not an error; defaults apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ALLEGRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cookies", "")
	v.SetDefault("edge_base_url", "https://edge.allegro.pl")
	v.SetDefault("solver_url", "http://localhost:8191/v1")
	v.SetDefault("output_format", "text")
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.solver_timeout_seconds", 90)
	v.SetDefault("http.lazy_timeout_seconds", 15)
	v.SetDefault("http.host_qps", 2.0)
}

// Validate rejects settings no command could run with.
func (c Config) Validate() error {
	switch c.OutputFormat {
	case "text", "json", "tsv":
	default:
		return fmt.Errorf("invalid output_format %q (want text, json, or tsv)", c.OutputFormat)
	}
	if c.HTTP.TimeoutSeconds <= 0 || c.HTTP.SolverTimeoutSeconds <= 0 || c.HTTP.LazyTimeoutSeconds <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// Save writes the config back to the given file (or the default location
// when path is empty), creating the directory when needed.
func Save(cfg Config, path string) error {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.Set("cookies", cfg.Cookies)
	v.Set("edge_base_url", cfg.EdgeBaseURL)
	v.Set("solver_url", cfg.SolverURL)
	v.Set("output_format", cfg.OutputFormat)
	v.Set("user_agent", cfg.UserAgent)
	v.Set("http.timeout_seconds", cfg.HTTP.TimeoutSeconds)
	v.Set("http.solver_timeout_seconds", cfg.HTTP.SolverTimeoutSeconds)
	v.Set("http.lazy_timeout_seconds", cfg.HTTP.LazyTimeoutSeconds)
	v.Set("http.host_qps", cfg.HTTP.HostQPS)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
