package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/myrjola/interrogation/internal/errors"
)

// writeSlack is added on top of the reply timeout so that a slow reply still gets written before the server gives up.
const writeSlack = 5 * time.Second

// configureAndStartServer serves the API on addr until ctx is done and then shuts down gracefully.
func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	defaultTimeout := app.cfg.ReplyTimeout + writeSlack
	srv := &http.Server{ //nolint:exhaustruct // defaults are fine for the rest.
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(defaultTimeout),
		IdleTimeout:       time.Minute,
		ReadTimeout:       writeSlack,
		WriteTimeout:      defaultTimeout,
		ReadHeaderTimeout: time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", addr))
	}

	shutdownComplete := make(chan error, 1)
	go func() {
		<-ctx.Done()
		app.logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelInfo, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
		defer cancel()
		shutdownComplete <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String("addr", listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	if err = <-shutdownComplete; err != nil {
		return errors.Wrap(err, "shutdown server")
	}
	return nil
}
