package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramsmith/internal/config"
	"github.com/matzehuels/diagramsmith/pkg/cache"
	"github.com/matzehuels/diagramsmith/pkg/diagram/svgcheck"
	"github.com/matzehuels/diagramsmith/pkg/llm"
	"github.com/matzehuels/diagramsmith/pkg/pipeline"
	"github.com/matzehuels/diagramsmith/pkg/render"
)

// buildDeps assembles the pipeline dependencies from configuration. With
// noModel set, both models stay nil and the pipeline runs its
// deterministic fallbacks.
func buildDeps(cfg config.Config, logger *log.Logger, noModel bool) (pipeline.Deps, error) {
	deps := pipeline.Deps{
		Renderer: render.NewRSVG(),
		Checker:  svgcheck.New(),
		Logger:   logger,
	}

	if !noModel {
		client, err := llm.NewClient(llm.ClientOptions{
			APIKey:      cfg.APIKey(),
			BaseURL:     cfg.OpenAI.BaseURL,
			TextModel:   cfg.OpenAI.TextModel,
			VisionModel: cfg.OpenAI.VisionModel,
			Timeout:     cfg.OpenAI.Timeout(),
		})
		if err != nil {
			return deps, err
		}
		deps.Text = client
		deps.Vision = client
	}

	return deps, nil
}

// cacheDir returns the file cache directory.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(base, "diagramsmith"), nil
}

// openCache opens the configured cache backend. defaultBackend applies
// when the config leaves the backend unset. A "none" backend returns a
// nil cache.
func openCache(ctx context.Context, cfg config.Cache, defaultBackend string) (cache.Cache, cache.Keyer, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = defaultBackend
	}

	var (
		c   cache.Cache
		err error
	)
	switch backend {
	case "none":
		return nil, nil, nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir, err = cacheDir()
			if err != nil {
				return nil, nil, err
			}
		}
		c, err = cache.NewFileCache(dir)
	case "redis":
		c, err = cache.NewRedisCache(ctx, cfg.RedisURL)
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", backend)
	}
	if err != nil {
		return nil, nil, err
	}

	keyer := cache.NewDefaultKeyer()
	if cfg.Scope != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Scope)
	}
	return c, keyer, nil
}
