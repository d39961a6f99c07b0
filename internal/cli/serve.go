package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/admin"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve command exposing the admin HTTP API.
func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cache admin HTTP API",
		Long: "Serves the dashboard admin endpoints: GET /api/cache/status for " +
			"statistics and POST /api/cache/manage for clear, delete, cleanup, " +
			"and warmup actions.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cfg, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if listen == "" {
				listen = cfg.Server.Listen
			}

			app := admin.NewApp(c, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", listen).Msg("admin API listening")
				errCh <- app.Listen(listen)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info().Msg("shutting down admin API")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return app.ShutdownWithContext(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	return cmd
}
