package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		port   int
		host   string
		origin string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the navigation server",
		Long: `Start the navigation server.

The server loads the route manifest, serves the page shell for every path
and runs one navigation session per WebSocket connection. Views are
rendered from templates in the content directory or S3 bucket.

Endpoints:
  • /_nav/ws       thin-client WebSocket (server.wsPath)
  • /_nav/match    route selection for ?url=
  • /metrics       Prometheus metrics (server.metricsPath)

Examples:
  navrouter serve
  navrouter serve --port=8080
  navrouter serve --origin=https://example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.config)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if origin != "" {
				cfg.Origin = origin
			}
			if root.logLevel != "" {
				cfg.Log.Level = root.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, newStore(cfg), logger)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.Address(),
				Handler:           a.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			out := cmd.OutOrStdout()
			success(out, "Serving %d routes on http://%s", a.routes.Len(), cfg.Address())
			info(out, "WebSocket: %s", cfg.Server.WSPath)
			if a.metrics != nil {
				info(out, "Metrics:   %s", cfg.Server.MetricsPath)
			}

			select {
			case err := <-errCh:
				if !stderrors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			info(out, "Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.nav.Close()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from navrouter.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from navrouter.json)")
	cmd.Flags().StringVar(&origin, "origin", "", "Site origin for same-origin checks")

	return cmd
}
