package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server and the periodic sync",
	Long: `Start the Model Context Protocol server so AI assistants can sync
tickets, normalise product names and read the ticket history.

By default, the server communicates over stdio using JSON-RPC. Use --http to
listen on an address instead. While the server runs, the ticket sync is
repeated every sync.interval when the scheduler is enabled.

Examples:
  # Stdio mode (for desktop assistants)
  omniticket serve

  # HTTP mode with prometheus metrics
  omniticket serve --http :8080 --metrics-addr :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("http", "", "HTTP listen address (empty = use stdio)")
	serveCmd.Flags().String("metrics-addr", "", "address for the /metrics endpoint (default metrics.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	httpAddr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}
	addr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("getting metrics-addr flag: %w", err)
	}
	if addr == "" {
		addr = metricsAddr
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Sync:     syncOrchestrator,
		Resolver: nameResolver,
		Ledger:   ledgerService,
		Rules:    ruleService,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stdout belongs to the protocol in stdio mode.
	status := cmd.ErrOrStderr()

	if schedulerEnabled && scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
		fmt.Fprintln(status, "Periodic ticket sync enabled")
	}

	if addr != "" {
		if metricsHandler == nil {
			return errors.New("metrics not configured")
		}
		go serveMetrics(ctx, addr, metricsHandler)
		fmt.Fprintf(status, "Metrics available on http://%s/metrics\n", displayAddr(addr))
	}

	if httpAddr != "" {
		fmt.Fprintf(status, "MCP server listening on http://%s\n", displayAddr(httpAddr))
		return server.RunHTTP(ctx, httpAddr)
	}

	return server.Run(ctx)
}

// serveMetrics exposes handler on addr until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped: %v", err)
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
