package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/internal/server"
	"github.com/matzehuels/panecraft/pkg/cache"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noAuth    bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the project, tree editing and code generation API.

Storage, session and cache backends come from the config file. With
--no-auth every request acts as the local user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if noAuth {
				cfg.Server.NoAuth = true
			}

			projects, err := cfg.OpenProjects(ctx)
			if err != nil {
				return fmt.Errorf("open project store: %w", err)
			}
			defer projects.Close()
			sessions, err := cfg.OpenSessions(ctx)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer sessions.Close()
			artifacts, err := cfg.OpenCache(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer artifacts.Close()

			var metrics *server.Metrics
			if !noMetrics {
				metrics = server.NewMetrics()
				metrics.Install()
			}

			srv, err := server.New(server.Options{
				Projects:   projects,
				Sessions:   sessions,
				Cache:      artifacts,
				Keyer:      cache.NewScopedKeyer(cache.NewDefaultKeyer(), "server:"),
				Policy:     cfg.Policy,
				NoAuth:     cfg.Server.NoAuth,
				SessionTTL: cfg.Session.TTL,
				CacheTTL:   cfg.Cache.TTL,
				Logger:     c.Logger,
				Metrics:    metrics,
			})
			if err != nil {
				return err
			}

			c.Logger.Info("starting server",
				"storage", cfg.Storage.Backend,
				"sessions", cfg.Session.Backend,
				"cache", cfg.Cache.Backend)
			return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "serve every request as the local user")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	return cmd
}
