package app

import (
	"errors"
	"fmt"

	"github.com/vk/assetgrid/internal/contextfile"
	"github.com/vk/assetgrid/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// CatalogPaths are .hcl files or directories. Empty selects the
	// built-in catalog.
	CatalogPaths []string
	// ContextPath is a YAML, JSON or .properties request snapshot. Empty
	// starts from a blank snapshot.
	ContextPath string
	Overrides   contextfile.Overrides

	BaseURL string
	Version string
	Debug   bool

	Output render.Format
	Query  string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn' or 'error'", cfg.LogLevel)
	}

	output, err := render.ParseFormat(string(cfg.Output))
	if err != nil {
		return nil, err
	}
	cfg.Output = output

	if cfg.Query != "" && cfg.Output == render.FormatTable {
		return nil, errors.New("a query cannot be combined with table output")
	}

	return &cfg, nil
}
