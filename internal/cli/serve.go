package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/wooctl/internal/adapters/store/wpdb"
	"github.com/eshaffer321/wooctl/internal/infrastructure/sandbox"
)

const shutdownTimeout = 30 * time.Second

// RegisterSandboxCmd adds `sandbox init` and `sandbox serve`
func RegisterSandboxCmd(root *cobra.Command, app *App) {
	flags := &SandboxFlags{}

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Local demo store backed by SQLite",
		Long: "The sandbox is a SQLite copy of the WooCommerce tables seeded with demo orders. " +
			"Point the wpdb driver at it, or serve it over the WooCommerce REST routes for the rest driver.",
	}
	cmd.PersistentFlags().StringVar(&flags.DatabasePath, "db", "", "Sandbox database path (default from config)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create and seed the sandbox database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.sandboxPath(flags)
			if err := sandbox.Init(cmd.Context(), path, flags.Force); err != nil {
				return err
			}
			app.logger.Info("sandbox database ready", slog.String("path", path))
			PrintSuccess(app.Stdout, fmt.Sprintf("Sandbox database ready at %s", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&flags.Force, "force", false, "Delete an existing sandbox database first")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sandbox over the WooCommerce REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runServe(cmd.Context(), flags)
		},
	}
	serveCmd.Flags().StringVar(&flags.Addr, "addr", "", "Listen address (default from config)")

	cmd.AddCommand(initCmd, serveCmd)
	root.AddCommand(cmd)
}

func (a *App) sandboxPath(flags *SandboxFlags) string {
	if flags.DatabasePath != "" {
		return flags.DatabasePath
	}
	return a.cfg.Sandbox.DatabasePath
}

// runServe serves the sandbox until ctx is cancelled, then shuts down gracefully
func (a *App) runServe(ctx context.Context, flags *SandboxFlags) error {
	logger := a.logger.With("system", "sandbox")

	path := a.sandboxPath(flags)
	if !sandbox.Exists(path) {
		return fmt.Errorf("sandbox database %s not found, run `wooctl sandbox init` first", path)
	}

	loc, err := a.cfg.Store.Location()
	if err != nil {
		return err
	}

	st, err := wpdb.Open(ctx, wpdb.Config{
		Driver:      wpdb.DriverSQLite,
		DSN:         path,
		TablePrefix: sandbox.TablePrefix,
		Location:    loc,
	}, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	addr := flags.Addr
	if addr == "" {
		addr = a.cfg.Sandbox.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := sandbox.NewServer(st, sandbox.ServerConfig{
		ConsumerKey:    a.cfg.Sandbox.ConsumerKey,
		ConsumerSecret: a.cfg.Sandbox.ConsumerSecret,
		Location:       loc,
		AllowOrigins:   a.cfg.Sandbox.AllowOrigins,
	}, a.logger)

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("sandbox listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("database", path),
	)
	return serveUntilDone(ctx, httpServer, ln, logger)
}

// serveUntilDone serves on ln until ctx is cancelled or Serve fails. The
// shutdown goroutine has finished by the time it returns.
func serveUntilDone(ctx context.Context, httpServer *http.Server, ln net.Listener, logger *slog.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Handle graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("shutting down sandbox server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-done
		return fmt.Errorf("sandbox server failed: %w", err)
	}

	<-done
	logger.Info("server stopped")
	return nil
}
