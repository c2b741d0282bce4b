package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// UpdateResult describes the outcome of a status transition
type UpdateResult struct {
	OrderID  int64
	Status   string
	Previous string
	Changed  bool
}

// Message is the operator-facing success line
func (r UpdateResult) Message() string {
	if !r.Changed {
		return fmt.Sprintf("Order status was already %s", r.Status)
	}
	return fmt.Sprintf("Status of order #%d is now %s", r.OrderID, r.Status)
}

// UpdateStatus moves an order to newStatus.
//
// The status is normalized and validated against the store's current legal
// set before the order is read. Requesting the status the order already has
// succeeds without a write; otherwise exactly one transition call is issued.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*UpdateResult, error) {
	code := status.Normalize(newStatus)

	legal, err := s.store.OrderStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order statuses: %w", err)
	}
	if !legal.Contains(code) {
		return nil, &InvalidStatusError{Status: code, Legal: legal.Codes()}
	}

	o, err := s.fetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{OrderID: orderID, Status: code, Previous: o.Status}
	if o.Status == code {
		s.logger.Info("order already in requested status",
			slog.Int64("order_id", orderID),
			slog.String("status", code),
		)
		return result, nil
	}

	s.logger.Info("updating order status",
		slog.Int64("order_id", orderID),
		slog.String("from", o.Status),
		slog.String("to", code),
	)
	if err := s.store.UpdateOrderStatus(ctx, orderID, code); err != nil {
		return nil, fmt.Errorf("failed to update order #%d: %w", orderID, err)
	}

	result.Changed = true
	return result, nil
}
