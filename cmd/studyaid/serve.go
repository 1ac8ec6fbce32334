package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/studyaid/internal/server"
	"github.com/thywilljoshua/studyaid/internal/session"
)

func serveCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON study API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if listen == "" {
				listen = a.cfg.Listen
			}
			if st, ok := a.store.(*session.SQLiteStore); ok && a.cfg.SessionTTL > 0 {
				n, err := st.Prune(ctx, time.Now().Add(-a.cfg.SessionTTL))
				if err != nil {
					return err
				}
				if n > 0 {
					slog.Info("pruned stale sessions", "count", n)
				}
			}

			api := server.New(a.store, a.tutor, server.Config{MaxUploadBytes: a.cfg.MaxUploadBytes(), Logger: a.logger})
			srv := &http.Server{
				Addr:              listen,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				slog.Info("server starting", "addr", listen, "model", a.cfg.Model)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	return cmd
}
