package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filingmap/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := a.cfg

			slog.Info("configuration loaded",
				"addr", cfg.Server.Addr(),
				"database", cfg.Database.Enabled(),
				"document_workers", cfg.Batch.DocumentWorkers,
				"require_api_key", cfg.Security.RequireAPIKey,
			)
			slog.Info("tables registered",
				"forms", a.svc.Forms().TableCount(),
				"xbrl", a.svc.XBRL().TableCount(),
			)

			st, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var opts []web.Option
			if st != nil {
				opts = append(opts, web.WithRuns(st))
			}
			server := web.NewServer(a.svc, cfg, opts...)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
			defer cancel()

			if status := a.svc.LimiterStatus(); status.Active > 0 {
				slog.Info("waiting for documents to complete", "active", status.Active)
				if err := a.svc.WaitForDocuments(shutdownCtx); err != nil {
					slog.Warn("documents did not complete in time", "error", err)
				} else {
					slog.Info("all documents completed")
				}
			}

			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
