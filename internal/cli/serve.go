package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/server"
)

func newServeCmd() *cobra.Command {
	cfg := config.DefaultServerConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the schedsim REST API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.LogLevel = flagLogLevel
			cfg.LogFormat = flagLogFormat
			if cfg.DBPath == "" {
				cfg.DBPath = defaultDBPath()
			}

			st, err := openStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("database ready", "path", cfg.DBPath)

			srv := server.New(cfg, st, registry, logger)
			httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", cfg.Addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	cmd.Flags().StringVar(&cfg.DBPath, "db", "", "Run database path (default ~/.schedsim/schedsim.db)")
	cmd.Flags().IntVar(&cfg.MaxTicks, "max-ticks", cfg.MaxTicks, "Per-run tick budget")

	return cmd
}
