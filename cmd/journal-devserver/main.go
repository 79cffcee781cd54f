package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mycelian/mycelian-journal/internal/config"
	"github.com/mycelian/mycelian-journal/internal/devserver"
	"github.com/mycelian/mycelian-journal/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	log := logger.New("journal-devserver")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if lvl, err := cfg.Level(); err == nil {
		log = log.Level(lvl)
	}

	log.Info().
		Str("addr", cfg.DevAddr).
		Str("public_url", cfg.DevPublicURL).
		Msg("Journal dev backend starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []devserver.Option{devserver.WithLogger(log)}
	if cfg.DevPublicURL != "" {
		opts = append(opts, devserver.WithPublicURL(cfg.DevPublicURL))
	}
	router := devserver.New(opts...).Router()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              cfg.DevAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads of long videos can be slow.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	errCh := serveHTTP(server, log)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}
