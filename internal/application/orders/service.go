// Package orders implements the wooctl operations: status transitions,
// single-order detail assembly, and order list queries.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/order"
)

// Options configures a Service
type Options struct {
	// Location is the store's timezone; naive datetimes are read in it
	Location *time.Location

	// PriceDecimals is the store's "Number of decimals" setting
	PriceDecimals int32

	// Now overrides the clock (tests)
	Now func() time.Time
}

// Service runs order operations against an injected store
type Service struct {
	store  store.Store
	logger *slog.Logger
	loc    *time.Location
	places int32
	now    func() time.Time
}

// NewService creates a new order service
func NewService(st store.Store, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:  st,
		logger: logger.With(slog.String("system", "orders")),
		loc:    opts.Location,
		places: opts.PriceDecimals,
		now:    opts.Now,
	}
}

// fetchOrder loads an order and rejects ids that resolve to other record types
func (s *Service) fetchOrder(ctx context.Context, id int64) (*store.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, orderNotFound(id)
		}
		return nil, fmt.Errorf("failed to fetch order #%d: %w", id, err)
	}
	if o == nil || o.RecordType != store.RecordTypeOrder {
		s.logger.Debug("record is not an order", slog.Int64("order_id", id))
		return nil, orderNotFound(id)
	}
	return o, nil
}

func (s *Service) money(d decimal.Decimal) order.Money {
	return order.NewMoney(d, s.places)
}

func (s *Service) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(store.DateLayout)
}
