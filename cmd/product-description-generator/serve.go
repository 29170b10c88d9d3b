package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-description-generator/internal/bootstrap"
	httpapi "github.com/fairyhunter13/product-description-generator/internal/http"
	"github.com/fairyhunter13/product-description-generator/internal/metrics"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
	"github.com/fairyhunter13/product-description-generator/internal/queue"
	"github.com/fairyhunter13/product-description-generator/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = obs.Logger.Sync() }()
		log := obs.Named("server")
		log.Infow("service_starting")

		st := store.New(cfg.RunHistoryLimit)
		mgr := queue.NewManager(cfg, queue.New(cfg.RunQueueBuffer, cfg.QueueHighWatermark), st, bootstrap.NewPipeline(cfg))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		mgr.Start(ctx)

		mw := metrics.NewMiddleware("product_description_generator")
		mw.MustRegisterDefault()
		app := httpapi.NewApp(cfg, st, mgr)

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(app, mw),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       60 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Infow("http_listen", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- errors.Wrap(err, "http server")
			}
		}()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigc:
			log.Infow("shutdown_signal", "signal", s.String())
		case err := <-errc:
			log.Errorw("http_server_error", "error", err)
			mgr.Stop()
			return err
		}

		app.StartShutdown()
		log.Infow("shutdown_drain_begin", "queue_depth", mgr.QueueDepth(), "worker_count", mgr.WorkerCount())

		ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelDrain()
		if drained := mgr.DrainUntil(ctxDrain); !drained {
			log.Warnw("shutdown_drain_timeout")
		} else {
			log.Infow("shutdown_drain_complete")
		}

		ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSrv()
		if err := srv.Shutdown(ctxSrv); err != nil {
			log.Errorw("http_shutdown_error", "error", err)
		}
		mgr.Stop()
		log.Infow("service_stopped")
		return nil
	},
}
