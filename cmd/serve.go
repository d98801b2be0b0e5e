package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"yt-latest/infrastructure/configuration"
	"yt-latest/infrastructure/logger"
	"yt-latest/infrastructure/metrics"
	httpHandler "yt-latest/interfaces/http"
	"yt-latest/server"
)

const purgeInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest-video HTTP endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	app := configuration.C.App
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		app.Port = p
	}

	metrics.Register(prometheus.DefaultRegisterer)

	cs := newCacheStore(ctx, configuration.C.Cache.Driver)
	defer cs.close()

	latestVideoUseCase, err := newLatestVideoUseCase(ctx, cs.store)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("YouTube client initialization failed")
	}
	latestVideoHandler := httpHandler.NewLatestVideoHandler(latestVideoUseCase, latestVideoDefaults())
	healthHandler := httpHandler.NewHealthHandler(latestVideoUseCase != nil, cs.driver)
	router := server.InitiateRouter(latestVideoHandler, healthHandler, configuration.C.Cors.AllowOrigins)

	if purger, ok := cs.store.(expiredPurger); ok {
		g.Go(func() error {
			ticker := time.NewTicker(purgeInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					n, err := purger.PurgeExpired(ctx)
					if err != nil {
						logger.GetLogger().WithField("error", err).Warn("Purging expired cache rows failed")
						continue
					}
					logger.GetLogger().WithField("rows", n).Debug("Purged expired cache rows")
				}
			}
		})
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Graceful shutdown failed")
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		return err
	}
	return nil
}
