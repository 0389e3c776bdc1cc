package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/noteease/internal/web"
	"github.com/aretw0/noteease/pkg/core"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the note views over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := closeStore(closeCtx, store); err != nil {
					a.logger.Error("shutdown", "error", err)
				}
			}()

			// Pick up edits made by other processes when the backend can report them.
			if err := store.AutoRefresh(ctx); err != nil && !errors.Is(err, core.ErrWatchUnsupported) {
				a.logger.Warn("auto refresh disabled", "error", err)
			}

			views, err := web.NewServer(store, web.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer views.Close()

			srv := &http.Server{
				Addr:              a.cfg.Addr,
				Handler:           views.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", a.cfg.Addr, "adapter", a.cfg.Adapter)
				fmt.Fprintf(cmd.OutOrStdout(), "Serving notes on http://%s\n", a.cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			views.Close()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address (overrides NOTEEASE_ADDR)")
	return cmd
}
