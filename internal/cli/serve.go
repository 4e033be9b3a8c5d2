package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramsmith/internal/config"
	"github.com/matzehuels/diagramsmith/internal/server"
	"github.com/matzehuels/diagramsmith/pkg/history"
	"github.com/matzehuels/diagramsmith/pkg/pipeline"
)

// newServeCmd creates the serve command, which runs the HTTP API.
func newServeCmd(cfgPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the DiagramSmith HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfgPath, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfgPath, addr string) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	deps, err := buildDeps(cfg, logger, false)
	if err != nil {
		return err
	}

	// Server deployments cache nothing unless configured, typically Redis.
	c, keyer, err := openCache(ctx, cfg.Cache, "none")
	if err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
	}

	var store history.Store
	if cfg.History.MongoURI != "" {
		ms, err := history.NewMongoStore(ctx, cfg.History.MongoURI, cfg.History.Database)
		if err != nil {
			return err
		}
		defer func() { _ = ms.Close(context.Background()) }()
		store = ms
		logger.Info("history persistence enabled", "database", cfg.History.Database)
	}

	runner := pipeline.NewRunner(deps, c, keyer)
	srv := server.New(runner, store, logger, cfg.Server, cfg.Diagram.ToDiagram())
	return srv.Run(ctx, addr)
}
