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
	"go.uber.org/zap"

	"github.com/recera/nodecloud/internal/dataset"
	"github.com/recera/nodecloud/internal/metrics"
	"github.com/recera/nodecloud/pkg/live"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		host    string
		port    int
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live cloud over HTTP and WebSocket",
		Long: `Serves a page with the cloud, streams frames to each browser over a WebSocket
session and reloads the dataset file when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			// CLI takes precedence over the config file
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}
			if noWatch {
				off := false
				a.cfg.Server.Watch = &off
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the dataset when it changes")

	return cmd
}

func runServe(ctx context.Context, a *app) error {
	entities, err := a.entities()
	if err != nil {
		return err
	}
	log := a.log

	srv := live.NewServer(entities, live.Config{
		Options:     a.options(),
		FPS:         a.cfg.Server.FPS,
		MaxSessions: a.cfg.Server.MaxSessions,
		Title:       a.cfg.Server.Title,
		Logger:      log.Named("live"),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.watching() {
		w, err := dataset.NewWatcher(a.cfg.Dataset, func(entities []nodecloud.Entity) {
			metrics.DatasetReloads.WithLabelValues("ok").Inc()
			srv.SetEntities(entities)
		}, log.Named("dataset"))
		if err != nil {
			return err
		}
		w.OnError(func(error) {
			metrics.DatasetReloads.WithLabelValues("error").Inc()
		})
		go w.Run(ctx)
		log.Info("watching dataset", zap.String("path", a.cfg.Dataset))
	}

	httpSrv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("url", fmt.Sprintf("http://%s", a.cfg.Addr())))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", a.cfg.Addr(), err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = httpSrv.Shutdown(shutdownCtx)
	srv.Close()
	return err
}
