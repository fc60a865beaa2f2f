package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bookkeeper/cli/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Alexa balance webhook",
	Long: `Run an HTTP server that answers Alexa balance questions.

Routes:
  POST /          Alexa intent request; the "Account" slot names the account
  GET  /          Cached account listing as JSON
  GET  /healthz   Liveness check
  GET  /metrics   Prometheus metrics

Examples:
  bookkeeper serve
  bookkeeper serve --listen 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetOutput(os.Stdout)
		if !cfg.Verbose {
			log.SetLevel(log.InfoLevel)
		}

		fetcher, err := newFetcher(false)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr: cfg.Listen,
			Handler: server.New(fetcher, server.Options{
				RateLimit: cfg.RateLimit,
				RateBurst: cfg.RateBurst,
			}).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		return serve(cmd.Context(), srv)
	},
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("webhook listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("webhook stopped")
	return nil
}

func init() {
	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
	_ = settings.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))

	rootCmd.AddCommand(serveCmd)
}
