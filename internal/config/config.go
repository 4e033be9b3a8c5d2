// Package config loads the DiagramSmith configuration file.
//
// Configuration is TOML, looked up at the platform config dir
// (~/.config/diagramsmith/config.toml on Linux) unless an explicit path is
// given. Every field has a sensible default; a missing file at the default
// location is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/errors"
)

// Config is the full application configuration.
type Config struct {
	OpenAI  OpenAI  `toml:"openai"`
	Diagram Diagram `toml:"diagram"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
	History History `toml:"history"`
}

// OpenAI configures the model backend.
type OpenAI struct {
	// APIKey authenticates against the API. The OPENAI_API_KEY
	// environment variable takes precedence over this field so keys can
	// stay out of config files.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint, for proxies and compatible
	// servers.
	BaseURL string `toml:"base_url"`

	// TextModel names the model for analysis and SVG generation.
	TextModel string `toml:"text_model"`

	// VisionModel names the model for selection and assessment.
	VisionModel string `toml:"vision_model"`

	// TimeoutSeconds bounds each model call.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the per-call timeout as a duration.
func (o OpenAI) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Diagram mirrors diagram.Config with TOML field names.
type Diagram struct {
	Width                   int     `toml:"width"`
	Height                  int     `toml:"height"`
	DPI                     int     `toml:"dpi"`
	Background              string  `toml:"background"`
	FontFamily              string  `toml:"font_family"`
	PrimaryColor            string  `toml:"primary_color"`
	NumCandidates           int     `toml:"num_candidates"`
	EnableRefinementLoop    bool    `toml:"enable_refinement_loop"`
	QualityThreshold        float64 `toml:"quality_threshold"`
	MaxRefinementIterations int     `toml:"max_refinement_iterations"`
}

// ToDiagram converts to the pipeline's configuration type, leaving zero
// fields for the pipeline to default.
func (d Diagram) ToDiagram() diagram.Config {
	return diagram.Config{
		Width:                   d.Width,
		Height:                  d.Height,
		DPI:                     d.DPI,
		BackgroundColor:         d.Background,
		FontFamily:              d.FontFamily,
		PrimaryColor:            d.PrimaryColor,
		NumCandidates:           d.NumCandidates,
		EnableRefinementLoop:    d.EnableRefinementLoop,
		QualityThreshold:        d.QualityThreshold,
		MaxRefinementIterations: d.MaxRefinementIterations,
	}
}

// Cache selects and configures the cache backend.
type Cache struct {
	// Backend is "file", "redis", or "none". Empty means "file" for the
	// CLI and "none" elsewhere.
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty means the platform
	// cache dir.
	Dir string `toml:"dir"`

	// RedisURL is the redis backend's connection URL.
	RedisURL string `toml:"redis_url"`

	// Scope prefixes all cache keys, isolating deployments that share
	// one Redis instance.
	Scope string `toml:"scope"`
}

// Server configures the HTTP API.
type Server struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`

	// RequestTimeoutSeconds bounds one generation request end to end.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (s Server) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// History configures the generation history store.
type History struct {
	// MongoURI enables history persistence when set.
	MongoURI string `toml:"mongo_uri"`

	// Database is the MongoDB database name.
	Database string `toml:"database"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		OpenAI: OpenAI{
			TimeoutSeconds: 120,
		},
		Server: Server{
			Addr:                  ":8080",
			RequestTimeoutSeconds: 300,
		},
		History: History{
			Database: "diagramsmith",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "diagramsmith", "config.toml"), nil
}

// Load reads the configuration from path. An empty path means the default
// location, where a missing file silently yields defaults; an explicit
// path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	return cfg, nil
}

// APIKey resolves the OpenAI API key: environment first, then the file.
func (c Config) APIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return c.OpenAI.APIKey
}
