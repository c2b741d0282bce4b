package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/order"
	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// List queries orders and returns one summary row per match, newest first.
//
// Start and End are parsed before the store is contacted, so a malformed
// value never turns into an unfiltered query. The bounds are independent:
// either may be given without the other.
func (s *Service) List(ctx context.Context, req ListRequest) ([]order.SummaryRow, error) {
	q, err := s.BuildQuery(req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("querying orders",
		slog.String("status", q.Status),
		slog.Int("date_constraints", len(q.Dates)),
	)

	found, err := s.store.QueryOrders(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	rows := make([]order.SummaryRow, 0, len(found))
	if len(found) == 0 {
		return rows, nil
	}

	gateways, err := s.store.PaymentGateways(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment gateways: %w", err)
	}

	for _, o := range found {
		payment := resolvePayment(gateways, o.PaymentMethod)
		shippingName, shippingID := lastShipping(o.ShippingLines)
		rows = append(rows, order.SummaryRow{
			ID:           o.ID,
			Date:         s.formatDate(o.Created),
			CustomerID:   o.CustomerID,
			Status:       status.Normalize(o.Status),
			Total:        s.money(o.Total),
			PaymentTitle: payment.Title,
			PaymentID:    payment.ID,
			ShippingName: shippingName,
			ShippingID:   shippingID,
		})
	}

	s.logger.Debug("orders listed", slog.Int("count", len(rows)))
	return rows, nil
}

// BuildQuery turns list filters into a store query
func (s *Service) BuildQuery(req ListRequest) (store.Query, error) {
	q := store.OrderQuery()
	if req.Type != "" {
		q.Status = status.Normalize(req.Type)
	}

	if req.Start != "" {
		start, err := s.parseBound("start", req.Start)
		if err != nil {
			return store.Query{}, err
		}
		q.Dates = append(q.Dates, store.NewDateQuery(start, store.OnOrAfter))
	}

	if req.End != "" {
		end, err := s.parseBound("end", req.End)
		if err != nil {
			return store.Query{}, err
		}
		q.Dates = append(q.Dates, store.NewDateQuery(end, store.OnOrBefore))
	}

	return q, nil
}

func (s *Service) parseBound(field, value string) (time.Time, error) {
	t, err := ParseDateTime(value, s.loc, s.now())
	if err != nil {
		return time.Time{}, &DateParseError{Field: field, Value: value, Err: err}
	}
	return t.In(s.loc), nil
}
