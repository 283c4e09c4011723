package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/authsession"
)

// RunIssuer serves the reference issuer until interrupted.
func RunIssuer(args []string) error {
	options := &IssuerOptions{}
	if err := parse(options, &options.ServerOptions.ConfigURL, args); err != nil {
		return err
	}
	srv, err := authsession.NewServer(&options.ServerOptions)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("issuer listening", "addr", srv.Addr)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
