package woocommerce

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// DateLayout is the REST API's datetime format (no offset)
const DateLayout = "2006-01-02T15:04:05"

// Order is the REST representation of an order (wc/v3)
type Order struct {
	ID                int64          `json:"id"`
	ParentID          int64          `json:"parent_id"`
	Status            string         `json:"status"`
	Currency          string         `json:"currency"`
	DateCreated       string         `json:"date_created"`
	DateCreatedGMT    string         `json:"date_created_gmt"`
	DiscountTotal     string         `json:"discount_total"`
	DiscountTax       string         `json:"discount_tax"`
	ShippingTotal     string         `json:"shipping_total"`
	ShippingTax       string         `json:"shipping_tax"`
	CartTax           string         `json:"cart_tax"`
	Total             string         `json:"total"`
	TotalTax          string         `json:"total_tax"`
	CustomerID        int64          `json:"customer_id"`
	CustomerIPAddress string         `json:"customer_ip_address"`
	Billing           Address        `json:"billing"`
	Shipping          Address        `json:"shipping"`
	PaymentMethod     string         `json:"payment_method"`
	PaymentTitle      string         `json:"payment_method_title"`
	LineItems         []LineItem     `json:"line_items"`
	TaxLines          []TaxLine      `json:"tax_lines"`
	ShippingLines     []ShippingLine `json:"shipping_lines"`
	FeeLines          []FeeLine      `json:"fee_lines"`
	CouponLines       []CouponLine   `json:"coupon_lines"`
	Refunds           []RefundRef    `json:"refunds"`
}

// Address is a billing or shipping address
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Meta is a meta_data entry
type Meta struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// LineTax is an entry of a line's taxes array
type LineTax struct {
	ID       int64  `json:"id"`
	Total    string `json:"total"`
	Subtotal string `json:"subtotal,omitempty"`
}

// LineItem is a line_items entry
type LineItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ProductID   int64     `json:"product_id"`
	VariationID int64     `json:"variation_id"`
	Quantity    int64     `json:"quantity"`
	TaxClass    string    `json:"tax_class"`
	Subtotal    string    `json:"subtotal"`
	SubtotalTax string    `json:"subtotal_tax"`
	Total       string    `json:"total"`
	TotalTax    string    `json:"total_tax"`
	Taxes       []LineTax `json:"taxes"`
	MetaData    []Meta    `json:"meta_data"`
	SKU         string    `json:"sku"`
}

// TaxLine is a tax_lines entry
type TaxLine struct {
	ID               int64  `json:"id"`
	RateCode         string `json:"rate_code"`
	RateID           int64  `json:"rate_id"`
	Label            string `json:"label"`
	Compound         bool   `json:"compound"`
	TaxTotal         string `json:"tax_total"`
	ShippingTaxTotal string `json:"shipping_tax_total"`
	MetaData         []Meta `json:"meta_data"`
}

// ShippingLine is a shipping_lines entry
type ShippingLine struct {
	ID          int64     `json:"id"`
	MethodTitle string    `json:"method_title"`
	MethodID    string    `json:"method_id"`
	InstanceID  string    `json:"instance_id"`
	Total       string    `json:"total"`
	TotalTax    string    `json:"total_tax"`
	Taxes       []LineTax `json:"taxes"`
	MetaData    []Meta    `json:"meta_data"`
}

// FeeLine is a fee_lines entry
type FeeLine struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxClass  string    `json:"tax_class"`
	TaxStatus string    `json:"tax_status"`
	Total     string    `json:"total"`
	TotalTax  string    `json:"total_tax"`
	Taxes     []LineTax `json:"taxes"`
	MetaData  []Meta    `json:"meta_data"`
}

// CouponLine is a coupon_lines entry
type CouponLine struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Discount    string `json:"discount"`
	DiscountTax string `json:"discount_tax"`
	MetaData    []Meta `json:"meta_data"`
}

// RefundRef is a refunds entry embedded in an order. Total is negative.
type RefundRef struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
	Total  string `json:"total"`
}

// PaymentGateway is a payment_gateways entry
type PaymentGateway struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	MethodTitle string `json:"method_title"`
}

// StatusTotal is a reports/orders/totals entry, one per registered status
type StatusTotal struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// StatusUpdate is the body of a status transition request
type StatusUpdate struct {
	Status string `json:"status"`
}

// ErrorResponse is the REST API's error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

// ToStore converts a REST order to the store representation.
// Times are returned in loc.
func ToStore(o Order, loc *time.Location) (*store.Order, error) {
	created, err := parseCreated(o, loc)
	if err != nil {
		return nil, err
	}

	p := amountParser{}
	out := &store.Order{
		ID:            o.ID,
		RecordType:    store.RecordTypeOrder,
		Status:        status.Normalize(o.Status),
		Created:       created,
		CustomerID:    o.CustomerID,
		CustomerIP:    o.CustomerIPAddress,
		Billing:       addressToStore(o.Billing),
		Shipping:      addressToStore(o.Shipping),
		PaymentMethod: o.PaymentMethod,
		DiscountTotal: p.parse("discount_total", o.DiscountTotal),
		ShippingTotal: p.parse("shipping_total", o.ShippingTotal),
		Total:         p.parse("total", o.Total),
	}

	for _, li := range o.LineItems {
		out.LineItems = append(out.LineItems, store.LineItem{
			ID:          li.ID,
			Name:        li.Name,
			ProductID:   li.ProductID,
			VariationID: li.VariationID,
			Quantity:    li.Quantity,
			TaxClass:    li.TaxClass,
			Subtotal:    p.parse("line_items.subtotal", li.Subtotal),
			SubtotalTax: p.parse("line_items.subtotal_tax", li.SubtotalTax),
			Total:       p.parse("line_items.total", li.Total),
			TotalTax:    p.parse("line_items.total_tax", li.TotalTax),
			Taxes:       p.lineTaxes(li.Taxes),
			MetaData:    metaToStore(li.MetaData),
		})
	}
	for _, f := range o.FeeLines {
		out.Fees = append(out.Fees, store.Fee{
			ID:        f.ID,
			Name:      f.Name,
			TaxClass:  f.TaxClass,
			TaxStatus: f.TaxStatus,
			Total:     p.parse("fee_lines.total", f.Total),
			TotalTax:  p.parse("fee_lines.total_tax", f.TotalTax),
			Taxes:     p.lineTaxes(f.Taxes),
			MetaData:  metaToStore(f.MetaData),
		})
	}
	for _, s := range o.ShippingLines {
		out.ShippingLines = append(out.ShippingLines, store.ShippingLine{
			ID:          s.ID,
			MethodTitle: s.MethodTitle,
			MethodID:    s.MethodID,
			Total:       p.parse("shipping_lines.total", s.Total),
			TotalTax:    p.parse("shipping_lines.total_tax", s.TotalTax),
			Taxes:       p.lineTaxes(s.Taxes),
			MetaData:    metaToStore(s.MetaData),
		})
	}
	for _, c := range o.CouponLines {
		out.Coupons = append(out.Coupons, store.Coupon{
			ID:          c.ID,
			Code:        c.Code,
			Discount:    p.parse("coupon_lines.discount", c.Discount),
			DiscountTax: p.parse("coupon_lines.discount_tax", c.DiscountTax),
			MetaData:    metaToStore(c.MetaData),
		})
	}
	for _, t := range o.TaxLines {
		out.TaxLines = append(out.TaxLines, store.TaxLine{
			ID:               t.ID,
			RateCode:         t.RateCode,
			RateID:           t.RateID,
			Label:            t.Label,
			Compound:         t.Compound,
			TaxTotal:         p.parse("tax_lines.tax_total", t.TaxTotal),
			ShippingTaxTotal: p.parse("tax_lines.shipping_tax_total", t.ShippingTaxTotal),
			MetaData:         metaToStore(t.MetaData),
		})
	}
	for _, r := range o.Refunds {
		out.Refunds = append(out.Refunds, store.Refund{
			ID:     r.ID,
			Reason: r.Reason,
			Amount: p.parse("refunds.total", r.Total).Abs(),
		})
	}

	if p.err != nil {
		return nil, fmt.Errorf("order #%d: %w", o.ID, p.err)
	}
	return out, nil
}

// FromStore converts a store order to its REST representation
func FromStore(o *store.Order, loc *time.Location) Order {
	out := Order{
		ID:                o.ID,
		Status:            status.Normalize(o.Status),
		DateCreated:       o.Created.In(loc).Format(DateLayout),
		DateCreatedGMT:    o.Created.UTC().Format(DateLayout),
		DiscountTotal:     o.DiscountTotal.StringFixed(2),
		ShippingTotal:     o.ShippingTotal.StringFixed(2),
		Total:             o.Total.StringFixed(2),
		CustomerID:        o.CustomerID,
		CustomerIPAddress: o.CustomerIP,
		Billing:           addressFromStore(o.Billing),
		Shipping:          addressFromStore(o.Shipping),
		PaymentMethod:     o.PaymentMethod,
		LineItems:         []LineItem{},
		TaxLines:          []TaxLine{},
		ShippingLines:     []ShippingLine{},
		FeeLines:          []FeeLine{},
		CouponLines:       []CouponLine{},
		Refunds:           []RefundRef{},
	}

	for _, li := range o.LineItems {
		out.LineItems = append(out.LineItems, LineItem{
			ID:          li.ID,
			Name:        li.Name,
			ProductID:   li.ProductID,
			VariationID: li.VariationID,
			Quantity:    li.Quantity,
			TaxClass:    li.TaxClass,
			Subtotal:    li.Subtotal.String(),
			SubtotalTax: li.SubtotalTax.String(),
			Total:       li.Total.String(),
			TotalTax:    li.TotalTax.String(),
			Taxes:       lineTaxesFromStore(li.Taxes),
			MetaData:    metaFromStore(li.MetaData),
		})
	}
	for _, f := range o.Fees {
		out.FeeLines = append(out.FeeLines, FeeLine{
			ID:        f.ID,
			Name:      f.Name,
			TaxClass:  f.TaxClass,
			TaxStatus: f.TaxStatus,
			Total:     f.Total.String(),
			TotalTax:  f.TotalTax.String(),
			Taxes:     lineTaxesFromStore(f.Taxes),
			MetaData:  metaFromStore(f.MetaData),
		})
	}
	for _, s := range o.ShippingLines {
		out.ShippingLines = append(out.ShippingLines, ShippingLine{
			ID:          s.ID,
			MethodTitle: s.MethodTitle,
			MethodID:    s.MethodID,
			Total:       s.Total.String(),
			TotalTax:    s.TotalTax.String(),
			Taxes:       lineTaxesFromStore(s.Taxes),
			MetaData:    metaFromStore(s.MetaData),
		})
	}
	for _, c := range o.Coupons {
		out.CouponLines = append(out.CouponLines, CouponLine{
			ID:          c.ID,
			Code:        c.Code,
			Discount:    c.Discount.String(),
			DiscountTax: c.DiscountTax.String(),
			MetaData:    metaFromStore(c.MetaData),
		})
	}
	for _, t := range o.TaxLines {
		out.TaxLines = append(out.TaxLines, TaxLine{
			ID:               t.ID,
			RateCode:         t.RateCode,
			RateID:           t.RateID,
			Label:            t.Label,
			Compound:         t.Compound,
			TaxTotal:         t.TaxTotal.String(),
			ShippingTaxTotal: t.ShippingTaxTotal.String(),
			MetaData:         metaFromStore(t.MetaData),
		})
	}
	for _, r := range o.Refunds {
		out.Refunds = append(out.Refunds, RefundRef{
			ID:     r.ID,
			Reason: r.Reason,
			Total:  r.Amount.Abs().Neg().StringFixed(2),
		})
	}
	return out
}

func parseCreated(o Order, loc *time.Location) (time.Time, error) {
	if o.DateCreatedGMT != "" {
		t, err := time.ParseInLocation(DateLayout, o.DateCreatedGMT, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("order #%d: invalid date_created_gmt %q: %w", o.ID, o.DateCreatedGMT, err)
		}
		return t.In(loc), nil
	}
	if o.DateCreated == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, o.DateCreated, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("order #%d: invalid date_created %q: %w", o.ID, o.DateCreated, err)
	}
	return t, nil
}

// amountParser keeps the first parse error so conversions read straight through
type amountParser struct {
	err error
}

func (p *amountParser) parse(field, s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("invalid amount in %s: %q", field, s)
		}
		return decimal.Zero
	}
	return d
}

func (p *amountParser) lineTaxes(in []LineTax) []store.LineTax {
	out := make([]store.LineTax, 0, len(in))
	for _, t := range in {
		out = append(out, store.LineTax{
			RateID:   t.ID,
			Total:    p.parse("taxes.total", t.Total),
			Subtotal: p.parse("taxes.subtotal", t.Subtotal),
		})
	}
	return out
}

func lineTaxesFromStore(in []store.LineTax) []LineTax {
	out := make([]LineTax, 0, len(in))
	for _, t := range in {
		lt := LineTax{ID: t.RateID, Total: t.Total.String()}
		if !t.Subtotal.IsZero() {
			lt.Subtotal = t.Subtotal.String()
		}
		out = append(out, lt)
	}
	return out
}

func metaToStore(in []Meta) []store.Meta {
	out := make([]store.Meta, 0, len(in))
	for _, m := range in {
		out = append(out, store.Meta{ID: m.ID, Key: m.Key, Value: m.Value})
	}
	return out
}

func metaFromStore(in []store.Meta) []Meta {
	out := make([]Meta, 0, len(in))
	for _, m := range in {
		out = append(out, Meta{ID: m.ID, Key: m.Key, Value: m.Value})
	}
	return out
}

func addressToStore(a Address) store.Address {
	return store.Address{
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

func addressFromStore(a store.Address) Address {
	return Address{
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

// GatewaysToStore converts the payment_gateways response
func GatewaysToStore(in []PaymentGateway) store.Gateways {
	out := make(store.Gateways, 0, len(in))
	for _, g := range in {
		out = append(out, store.Gateway{ID: g.ID, Title: g.Title, Enabled: g.Enabled})
	}
	return out
}

// GatewaysFromStore builds a payment_gateways response
func GatewaysFromStore(in store.Gateways) []PaymentGateway {
	out := make([]PaymentGateway, 0, len(in))
	for _, g := range in {
		out = append(out, PaymentGateway{ID: g.ID, Title: g.Title, Enabled: g.Enabled, MethodTitle: g.Title})
	}
	return out
}

// StatusesToStore converts reports/orders/totals into a status set
func StatusesToStore(in []StatusTotal) status.Set {
	entries := make([]status.Entry, 0, len(in))
	for _, s := range in {
		entries = append(entries, status.Entry{Code: s.Slug, Label: s.Name})
	}
	return status.NewSet(entries...)
}

// StatusesFromStore builds a reports/orders/totals response.
// counts may be nil.
func StatusesFromStore(set status.Set, counts map[string]int) []StatusTotal {
	out := make([]StatusTotal, 0, set.Len())
	for _, e := range set.Entries() {
		out = append(out, StatusTotal{Slug: e.Code, Name: e.Label, Total: counts[e.Code]})
	}
	return out
}

func orderPath(id int64) string {
	return "/orders/" + strconv.FormatInt(id, 10)
}
