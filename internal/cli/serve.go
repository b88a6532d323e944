package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/argviz/argviz/internal/server"
	"github.com/argviz/argviz/pkg/cache"
	"github.com/argviz/argviz/pkg/config"
	"github.com/argviz/argviz/pkg/layout"
	"github.com/argviz/argviz/pkg/pipeline"
	"github.com/argviz/argviz/pkg/store"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the argviz HTTP API",
		Long: `Serve runs the argviz HTTP API: snapshot storage plus the layout
pipeline over JSON. Backends for the snapshot store and the layout cache
are selected in the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx := withLogger(cmd.Context(), c.Logger)

			st, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close(ctx)

			ca, err := openCache(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}

			// Redis is a shared backend, so scope the keys to this service.
			var keyer cache.Keyer
			if cfg.Cache.Backend == "redis" {
				keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "argviz:")
			}

			runner := pipeline.NewRunner(ca, keyer, c.Logger)
			defer runner.Close()

			c.Logger.Info("starting server",
				"addr", cfg.Server.Addr,
				"store", cfg.Store.Backend,
				"cache", cfg.Cache.Backend)

			srv := server.New(st, runner, c.Logger, server.Defaults{
				Width:  cfg.Canvas.Width,
				Height: cfg.Canvas.Height,
				Relaxation: layout.RelaxOptions{
					MaxTicks:        cfg.Relax.MaxTicks,
					EnergyThreshold: cfg.Relax.EnergyThreshold,
					EnergyDecay:     cfg.Relax.EnergyDecay,
				},
			})
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// openStore builds the snapshot store named by the configuration.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoOptions{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}

// openCache builds the layout cache named by the configuration.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case "file":
		return cache.NewFileCache(cfg.Cache.Dir)
	default:
		return cache.NewNullCache(), nil
	}
}
