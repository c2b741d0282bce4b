package orders

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/order"
)

// The projections below copy only allow-listed fields. Item metadata and
// per-line tax breakdowns stay behind in the store records.

func projectAddress(a store.Address) order.Address {
	return order.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Postcode:  a.Postcode,
		Country:   a.Country,
		State:     a.State,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

func (s *Service) projectLineItems(items []store.LineItem) []order.LineItem {
	out := make([]order.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, order.LineItem{
			ID:          it.ID,
			Name:        it.Name,
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
			TaxClass:    it.TaxClass,
			Subtotal:    s.money(it.Subtotal),
			SubtotalTax: s.money(it.SubtotalTax),
			Total:       s.money(it.Total),
			TotalTax:    s.money(it.TotalTax),
		})
	}
	return out
}

func (s *Service) projectFees(fees []store.Fee) []order.Fee {
	out := make([]order.Fee, 0, len(fees))
	for _, f := range fees {
		out = append(out, order.Fee{
			ID:        f.ID,
			Name:      f.Name,
			TaxClass:  f.TaxClass,
			TaxStatus: f.TaxStatus,
			Total:     s.money(f.Total),
			TotalTax:  s.money(f.TotalTax),
		})
	}
	return out
}

func (s *Service) projectShippingLines(lines []store.ShippingLine) []order.ShippingLine {
	out := make([]order.ShippingLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, order.ShippingLine{
			ID:       l.ID,
			Name:     l.MethodTitle,
			MethodID: l.MethodID,
			Total:    s.money(l.Total),
			TotalTax: s.money(l.TotalTax),
		})
	}
	return out
}

func (s *Service) projectCoupons(coupons []store.Coupon) []order.Coupon {
	out := make([]order.Coupon, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, order.Coupon{
			ID:          c.ID,
			Code:        c.Code,
			Discount:    s.money(c.Discount),
			DiscountTax: s.money(c.DiscountTax),
		})
	}
	return out
}

func (s *Service) projectRefunds(refunds []store.Refund) []order.Refund {
	out := make([]order.Refund, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, order.Refund{
			ID:     r.ID,
			Reason: r.Reason,
			Amount: s.money(r.Amount),
		})
	}
	return out
}

// projectTaxTotals builds one entry per rate, combining line and shipping tax
func (s *Service) projectTaxTotals(lines []store.TaxLine) []order.TaxTotal {
	out := make([]order.TaxTotal, 0, len(lines))
	for _, l := range lines {
		out = append(out, order.TaxTotal{
			Code:     l.RateCode,
			RateID:   l.RateID,
			Label:    l.Label,
			Compound: l.Compound,
			Amount:   s.money(l.TaxTotal.Add(l.ShippingTaxTotal)),
		})
	}
	return out
}

func refundedTotal(refunds []store.Refund) decimal.Decimal {
	total := decimal.Zero
	for _, r := range refunds {
		total = total.Add(r.Amount.Abs())
	}
	return total
}

// resolvePayment looks the payment method up in the gateway registry.
// Gateways removed since the order was placed resolve to N/A.
func resolvePayment(gateways store.Gateways, method string) order.Payment {
	gw, ok := gateways.Lookup(method)
	if !ok {
		return order.UnknownPayment()
	}
	return order.Payment{Title: gw.Title, ID: gw.ID}
}

// lastShipping returns the name and method id of the last shipping line
func lastShipping(lines []store.ShippingLine) (name, methodID string) {
	for _, l := range lines {
		name, methodID = l.MethodTitle, l.MethodID
	}
	return name, methodID
}
