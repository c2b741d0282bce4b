// Package cli wires the wooctl command tree: configuration, logging, the
// store backend, and the order and sandbox commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/application/orders"
	"github.com/eshaffer321/wooctl/internal/infrastructure/config"
	"github.com/eshaffer321/wooctl/internal/infrastructure/logging"
)

// App holds the per-invocation state shared by every command
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// OpenStore builds the store backend from the loaded config
	OpenStore StoreOpener

	// Now overrides the clock used for relative dates
	Now func() time.Time

	cfg     *config.Config
	logger  *slog.Logger
	runID   string
	closers []io.Closer
}

// NewApp creates an App writing to the process's stdout and stderr
func NewApp() *App {
	return &App{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		OpenStore: OpenStore,
		Now:       time.Now,
	}
}

// Execute runs the command tree with args and returns the process exit code
func (a *App) Execute(ctx context.Context, args []string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	a.teardown()
	if err != nil {
		PrintError(a.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCommand builds the wooctl command tree around app
func NewRootCommand(app *App) *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:           "wooctl",
		Short:         "Inspect and update WooCommerce orders",
		Long:          "wooctl reads and updates WooCommerce orders through the store's REST API or directly in its WordPress database.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd, flags)
		},
	}
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	flags.Register(root)

	RegisterUpdateOrderCmd(root, app)
	RegisterOrderCmd(root, app)
	RegisterSandboxCmd(root, app)

	return root
}

// setup loads configuration and builds the logger before any command runs
func (a *App) setup(cmd *cobra.Command, flags *GlobalFlags) error {
	var cfg *config.Config
	if cmd.Flags().Changed("config") {
		loaded, err := config.Load(flags.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", flags.ConfigPath, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrEnv_WithPath(flags.ConfigPath)
	}

	if flags.StoreDriver != "" {
		cfg.Store.Driver = flags.StoreDriver
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger, closer := logging.NewLoggerTo(a.Stderr, loggingCfg)
	a.closers = append(a.closers, closer)

	a.runID = uuid.NewString()
	a.logger = logger.With(logging.KeyRunID, a.runID)
	a.cfg = cfg

	a.logger.Debug("configuration loaded",
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("timezone", cfg.Store.Timezone),
	)
	return nil
}

// newService builds the order service over a store that is opened on first use
func (a *App) newService() (*orders.Service, error) {
	loc, err := a.cfg.Store.Location()
	if err != nil {
		return nil, err
	}

	st := newLazyStore(func(ctx context.Context) (store.Store, error) {
		return a.OpenStore(ctx, a.cfg, a.logger, a.runID)
	})
	a.closers = append(a.closers, st)

	now := a.Now
	if now == nil {
		now = time.Now
	}
	return orders.NewService(st, a.logger, orders.Options{
		Location:      loc,
		PriceDecimals: int32(a.cfg.Store.PriceDecimals),
		Now:           now,
	}), nil
}

// teardown closes the store and the log file in reverse order of creation
func (a *App) teardown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("failed to close resource", slog.Any("error", err))
		}
	}
	a.closers = nil
}
