package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"promptbench/internal/config"
	"promptbench/internal/httpapi"
)

func newServeCmd(st *cliState) *cobra.Command {
	var addr string
	var corsOrigins []string
	var corsEnabled bool
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API and the /events websocket",
		Example: "  promptbench serve --addr :8080 --prompts ./public",
		RunE: func(cmd *cobra.Command, args []string) error {
			over := config.Config{Addr: addr, CORSOrigins: corsOrigins}
			if cmd.Flags().Changed("cors") {
				over.CORSEnabled = config.Bool(corsEnabled)
			}
			cfg := config.Merge(st.cfg, over)
			log := st.log

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			httpapi.SetLogger(log)
			httpapi.SetDefaultLogLevel(cfg.LogLevel)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSOrigins, nil, nil)
			httpapi.SetBaseContext(ctx)

			hub := httpapi.NewHub()
			go hub.Run(ctx)

			sess, err := newSession(cfg, log, hub)
			if err != nil {
				return err
			}
			// /readyz reports loading until the first reload finishes.
			go func() { _ = sess.Reload(ctx) }()

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(sess, hub),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Str("prompts", cfg.PromptsSource).Msg("promptbench listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().BoolVar(&corsEnabled, "cors", false, "Enable CORS")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", nil, "Allowed CORS origins (comma separated)")
	return cmd
}
