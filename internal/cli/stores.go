package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/adapters/store/woocommerce"
	"github.com/eshaffer321/wooctl/internal/adapters/store/wpdb"
	"github.com/eshaffer321/wooctl/internal/domain/status"
	"github.com/eshaffer321/wooctl/internal/infrastructure/config"
)

// StoreOpener creates the store backend selected by cfg
type StoreOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string) (store.Store, error)

// OpenStore validates cfg and opens the configured backend
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string) (store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Store.Driver {
	case config.DriverREST:
		return NewRESTStore(cfg, logger, runID)
	case config.DriverWPDB:
		return NewWPDBStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewRESTStore creates a WooCommerce REST API client
func NewRESTStore(cfg *config.Config, logger *slog.Logger, runID string) (store.Store, error) {
	loc, err := cfg.Store.Location()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Store.REST.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	client, err := woocommerce.NewClient(woocommerce.Config{
		BaseURL:        cfg.Store.REST.URL,
		ConsumerKey:    cfg.GetAPIKey(cfg.Store.REST.ConsumerKey, "WOO_CONSUMER_KEY", "WC_CONSUMER_KEY"),
		ConsumerSecret: cfg.GetAPIKey(cfg.Store.REST.ConsumerSecret, "WOO_CONSUMER_SECRET", "WC_CONSUMER_SECRET"),
		Timeout:        timeout,
		RetryMax:       cfg.Store.REST.RetryMax,
		PageSize:       cfg.Store.REST.PageSize,
		Location:       loc,
		RequestID:      runID,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create WooCommerce client: %w", err)
	}
	return client, nil
}

// NewWPDBStore opens the WordPress database
func NewWPDBStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	loc, err := cfg.Store.Location()
	if err != nil {
		return nil, err
	}

	extras := make([]status.Entry, 0, len(cfg.Store.WPDB.ExtraStatuses))
	for _, st := range cfg.Store.WPDB.ExtraStatuses {
		code := status.Normalize(st.Code)
		label := strings.TrimSpace(st.Label)
		if label == "" {
			label = code
		}
		extras = append(extras, status.Entry{Code: code, Label: label})
	}

	db, err := wpdb.Open(ctx, wpdb.Config{
		Driver:        cfg.Store.WPDB.SQLDriver,
		DSN:           cfg.Store.WPDB.DSN,
		TablePrefix:   cfg.Store.WPDB.TablePrefix,
		Location:      loc,
		ExtraStatuses: extras,
	}, logger)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// lazyStore defers opening the backend until the first store call, so
// requests rejected during argument checks never touch the store
type lazyStore struct {
	open func(ctx context.Context) (store.Store, error)

	mu  sync.Mutex
	st  store.Store
	err error
}

var _ store.Store = (*lazyStore)(nil)

func newLazyStore(open func(ctx context.Context) (store.Store, error)) *lazyStore {
	return &lazyStore{open: open}
}

func (l *lazyStore) get(ctx context.Context) (store.Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st == nil && l.err == nil {
		l.st, l.err = l.open(ctx)
	}
	return l.st, l.err
}

func (l *lazyStore) GetOrder(ctx context.Context, id int64) (*store.Order, error) {
	st, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return st.GetOrder(ctx, id)
}

func (l *lazyStore) UpdateOrderStatus(ctx context.Context, id int64, code string) error {
	st, err := l.get(ctx)
	if err != nil {
		return err
	}
	return st.UpdateOrderStatus(ctx, id, code)
}

func (l *lazyStore) QueryOrders(ctx context.Context, q store.Query) ([]*store.Order, error) {
	st, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return st.QueryOrders(ctx, q)
}

func (l *lazyStore) OrderStatuses(ctx context.Context) (status.Set, error) {
	st, err := l.get(ctx)
	if err != nil {
		return status.Set{}, err
	}
	return st.OrderStatuses(ctx)
}

func (l *lazyStore) PaymentGateways(ctx context.Context) (store.Gateways, error) {
	st, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return st.PaymentGateways(ctx)
}

// Close closes the backend if it was opened
func (l *lazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.st == nil {
		return nil
	}
	return l.st.Close()
}
