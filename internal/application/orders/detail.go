package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/wooctl/internal/domain/order"
)

// Detail assembles the full record for a single order.
// A missing id fails with ErrOrderNotFound before anything else is read.
func (s *Service) Detail(ctx context.Context, req DetailRequest) (*order.Detail, error) {
	o, err := s.fetchOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	statuses, err := s.store.OrderStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order statuses: %w", err)
	}

	gateways, err := s.store.PaymentGateways(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment gateways: %w", err)
	}

	s.logger.Debug("assembling order detail",
		slog.Int64("order_id", o.ID),
		slog.Int("line_items", len(o.LineItems)),
		slog.Int("refunds", len(o.Refunds)),
	)

	return &order.Detail{
		OrderID: o.ID,
		Date:    s.formatDate(o.Created),
		Status: order.Status{
			Code:    o.Status,
			Message: statuses.Label(o.Status),
		},
		Customer: order.Customer{
			ID: o.CustomerID,
			IP: o.CustomerIP,
		},
		BillingAddress:  projectAddress(o.Billing),
		ShippingAddress: projectAddress(o.Shipping),
		Payment:         resolvePayment(gateways, o.PaymentMethod),
		Items:           s.projectLineItems(o.LineItems),
		Fees:            s.projectFees(o.Fees),
		ShippingLines:   s.projectShippingLines(o.ShippingLines),
		Refunds:         s.projectRefunds(o.Refunds),
		Coupons:         s.projectCoupons(o.Coupons),
		Totals: order.Totals{
			Refunded:   s.money(refundedTotal(o.Refunds)),
			Discount:   s.money(o.DiscountTotal),
			Shipping:   s.money(o.ShippingTotal),
			OrderTotal: s.money(o.Total),
			Taxes:      s.projectTaxTotals(o.TaxLines),
		},
	}, nil
}
