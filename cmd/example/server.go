package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/forgemail/pkg/mailbox"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

type runConfig struct {
	handler         http.Handler
	logger          *slog.Logger
	mailbox         *mailbox.Mailbox
	address         string
	shutdownTimeout time.Duration
	shutdownHooks   []func(context.Context) error
}

// run serves HTTP, and the dev mailbox when configured, until ctx is done,
// then shuts everything down within the shutdown timeout.
func run(ctx context.Context, cfg runConfig) error {
	server := &http.Server{
		Addr:              cfg.address,
		Handler:           cfg.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cfg.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.mailbox != nil {
		g.Go(cfg.mailbox.Serve)
	}

	g.Go(func() error {
		<-gctx.Done()
		cfg.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if cfg.mailbox != nil {
			if err := cfg.mailbox.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, hook := range cfg.shutdownHooks {
			if err := hook(shutdownCtx); err != nil {
				cfg.logger.Error("shutdown hook failed", slog.Any("error", err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		cfg.logger.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}
	cfg.logger.Info("shutdown completed")
	return nil
}
