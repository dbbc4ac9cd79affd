// Package config loads the console configuration from the XDG config
// directory, with AGENCY_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/agency/internal/filter"
)

const (
	// AppName is the application directory name.
	AppName = "agency"

	// FileName is the configuration file name inside the config directory.
	FileName = "config.yaml"
)

// Config is the whole configuration file
type Config struct {
	WorkerID        string `yaml:"worker_id" env:"AGENCY_WORKER"`
	ReviewerID      string `yaml:"reviewer_id" env:"AGENCY_REVIEWER"`
	ReviewerName    string `yaml:"reviewer_name" env:"AGENCY_REVIEWER_NAME"`
	ReviewerSurname string `yaml:"reviewer_surname" env:"AGENCY_REVIEWER_SURNAME"`

	// DBPath is the SQLite cache file; empty means the XDG data directory.
	DBPath string `yaml:"db_path" env:"AGENCY_DB"`

	Log     Log     `yaml:"log"`
	Filter  Filter  `yaml:"filter"`
	Metrics Metrics `yaml:"metrics"`
}

type Log struct {
	Level string `yaml:"level" env:"AGENCY_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir" env:"AGENCY_LOG_DIR"`
	JSON  bool   `yaml:"json" env:"AGENCY_LOG_JSON"`
}

type Filter struct {
	DefaultMode      string   `yaml:"default_mode" env:"AGENCY_FILTER_MODE" env-default:"active" validate:"oneof=active all"`
	TerminalStatuses []string `yaml:"terminal_statuses" env:"AGENCY_TERMINAL_STATUSES" env-default:"Completed,Cancelled,Accepted" validate:"dive,required"`
}

type Metrics struct {
	// Textfile receives the registry on exit, for the node_exporter textfile collector.
	Textfile string `yaml:"textfile" env:"AGENCY_METRICS_TEXTFILE"`
}

var validate = validator.New()

// Default returns the configuration written by WriteDefault
func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Filter: Filter{
			DefaultMode:      string(filter.ModeActive),
			TerminalStatuses: append([]string(nil), filter.DefaultTerminalStatuses...),
		},
	}
}

// DefaultDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath returns the default configuration file path
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}

// Load reads the file at path (the default path when empty) and applies
// environment overrides. A missing file is not an error; the environment
// and defaults are used alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated fields
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Mode is the configured default filter mode
func (c *Config) Mode() filter.Mode {
	return filter.ParseMode(c.Filter.DefaultMode)
}

// WriteDefault writes the default configuration to path unless a file is
// already there. The directory is created with mode 0700.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %q already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
