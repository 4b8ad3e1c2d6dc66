package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/pmc/internal/chatapi"
)

var serveAddr string

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat endpoint",
	Long: `Serve POST /api/chat backed by the configured LLM provider, with
GET /healthz and Prometheus metrics on GET /metrics.

The provider comes from config (provider, model) and its API key from
OPENAI_API_KEY or ANTHROPIC_API_KEY. Without a key every chat request
answers with the server error reply.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := chatapi.NewMetrics(reg)

		if cfg.APIKey() == "" {
			logger.Warn("no API key for provider; chat requests will fail", "provider", cfg.Provider)
		}
		handler := chatapi.NewHandler(newService(cfg, metrics, logger), metrics, logger)

		srv := &http.Server{
			Addr:              addr,
			Handler:           chatapi.NewMux(handler, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("Serving chat endpoint on %s (provider %s)\n", cyan("http://"+addr+"/api/chat"), cfg.Provider)

		if err := runServer(ctx, srv); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runServer serves until ctx is done, then shuts down gracefully
func runServer(ctx context.Context, srv *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down chat endpoint", "addr", srv.Addr)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
