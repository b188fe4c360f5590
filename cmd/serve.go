package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/handlers"
	"github.com/shelfscan/shelfscan/internal/llm"
	"github.com/shelfscan/shelfscan/internal/openlibrary"
)

func newServeCmd() *cobra.Command {
	var port string
	var strategy string
	var model string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the book detection HTTP API",
		Long: `Starts the shelfscan HTTP API on the specified port.

POST an image to /api/detect (multipart file upload or JSON {"image_url": ...})
to run detection. Past runs are kept in memory and listed at /api/sessions.`,
		Example: `  # Start server on default port 8888
  shelfscan serve

  # Start server on custom port with the simple strategy
  shelfscan serve --port 3000 --strategy simple`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := llm.NewClient()
			if err != nil {
				return err
			}

			if strategy == "" {
				strategy = detector.DefaultStrategy()
			}
			det, err := detector.New(strategy, gateway, model, openlibrary.NewClient())
			if err != nil {
				return err
			}

			handler := handlers.New(det, strategy, model)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/detect", handler.HandleDetect)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Shelfscan API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Detection strategy: tools or simple (default tools)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM model to use")

	return cmd
}
