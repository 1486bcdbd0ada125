package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazycamel/lazycamel/internal/gateway"
	"github.com/lazycamel/lazycamel/internal/logging"
	"github.com/spf13/cobra"
)

func newMockServerCmd() *cobra.Command {
	var addr, path, namespace, logLevel string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a simulated engine over the WebSocket JSON-RPC gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(os.Stderr, logLevel)

			engine := gateway.NewMockEngine()
			engine.Start(interval)
			defer engine.Close()

			svc := gateway.NewService(interval, logger, engine.Consoles()...)
			defer svc.Close()

			mux := http.NewServeMux()
			mux.Handle(path, gateway.NewHandler(svc, namespace, logger))
			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Graceful shutdown on SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "mock engine listening on ws://%s%s (namespace %s)\n", addr, path, namespace)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&path, "path", "/jsonrpc", "WebSocket endpoint path")
	cmd.Flags().StringVar(&namespace, "namespace", gateway.DefaultNamespace, "JSON-RPC method namespace")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "stream push and simulation interval")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}
