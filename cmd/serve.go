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

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/api"
	"github.com/amrixahmad/questionsmith/internal/config"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{withLLM: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cfg.ValidateServer(); err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.cfg.Addr
		}

		srv := api.NewServer(a.svc, api.NewAuthenticator(a.cfg.JWTSecret), a.logger, api.Options{
			CORSOrigins:    a.cfg.CORSOrigins,
			RequestTimeout: a.cfg.RequestTimeout,
			PublicBaseURL:  a.cfg.PublicURL,
		})
		hs := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			a.logger.Info("http server listening", "addr", addr, "db_driver", a.cfg.DBDriver)
			errc <- hs.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
		}

		a.logger.Info("shutting down http server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for --user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		tok, err := api.NewAuthenticator(cfg.JWTSecret).Issue(userFlag(cmd), ttl)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUESTIONSMITH_ADDR)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
