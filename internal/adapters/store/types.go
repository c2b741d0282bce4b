// Package store defines the port wooctl uses to reach the WooCommerce
// order store, and the store-side shape of the records it returns.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// Record types the store classifies its content with
const (
	RecordTypeOrder  = "shop_order"
	RecordTypeRefund = "shop_order_refund"
)

// ErrNotFound is returned when an id does not resolve to any record
var ErrNotFound = errors.New("record not found")

// Store is the external WooCommerce order store.
// Implementations exist for the REST API and for direct database access.
type Store interface {
	// GetOrder fetches a single record by id. The caller checks RecordType.
	GetOrder(ctx context.Context, id int64) (*Order, error)

	// UpdateOrderStatus transitions an order to a canonical status.
	// The store owns notes and notifications.
	UpdateOrderStatus(ctx context.Context, id int64, code string) error

	// QueryOrders returns orders matching q, newest first
	QueryOrders(ctx context.Context, q Query) ([]*Order, error)

	// OrderStatuses returns the store's current legal status set
	OrderStatuses(ctx context.Context) (status.Set, error)

	// PaymentGateways returns every gateway registered with the store
	PaymentGateways(ctx context.Context) (Gateways, error)

	Close() error
}

// Order is an order as the store holds it, bookkeeping included.
// Status is canonical; Created is in the store's timezone.
type Order struct {
	ID            int64
	RecordType    string
	Status        string
	Created       time.Time
	CustomerID    int64
	CustomerIP    string
	Billing       Address
	Shipping      Address
	PaymentMethod string

	LineItems     []LineItem
	Fees          []Fee
	ShippingLines []ShippingLine
	Coupons       []Coupon
	TaxLines      []TaxLine
	Refunds       []Refund

	DiscountTotal decimal.Decimal
	ShippingTotal decimal.Decimal
	Total         decimal.Decimal
}

// Address holds the eleven standard address fields
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	Postcode  string
	Country   string
	State     string
	Email     string
	Phone     string
}

// Meta is an item metadata entry. Store internal.
type Meta struct {
	ID    int64
	Key   string
	Value any
}

// LineTax is a per-line tax breakdown entry. Store internal.
type LineTax struct {
	RateID   int64
	Total    decimal.Decimal
	Subtotal decimal.Decimal
}

// LineItem is a product line item
type LineItem struct {
	ID          int64
	Name        string
	ProductID   int64
	VariationID int64
	Quantity    int64
	TaxClass    string
	Subtotal    decimal.Decimal
	SubtotalTax decimal.Decimal
	Total       decimal.Decimal
	TotalTax    decimal.Decimal
	Taxes       []LineTax
	MetaData    []Meta
}

// Fee is a fee line item
type Fee struct {
	ID        int64
	Name      string
	TaxClass  string
	TaxStatus string
	Total     decimal.Decimal
	TotalTax  decimal.Decimal
	Taxes     []LineTax
	MetaData  []Meta
}

// ShippingLine is a shipping line item
type ShippingLine struct {
	ID          int64
	MethodTitle string
	MethodID    string
	Total       decimal.Decimal
	TotalTax    decimal.Decimal
	Taxes       []LineTax
	MetaData    []Meta
}

// Coupon is a coupon line item
type Coupon struct {
	ID          int64
	Code        string
	Discount    decimal.Decimal
	DiscountTax decimal.Decimal
	MetaData    []Meta
}

// TaxLine is the tax collected for one rate
type TaxLine struct {
	ID               int64
	RateCode         string
	RateID           int64
	Label            string
	Compound         bool
	TaxTotal         decimal.Decimal
	ShippingTaxTotal decimal.Decimal
	MetaData         []Meta
}

// Refund is a refund against an order. Amount is positive.
type Refund struct {
	ID     int64
	Reason string
	Amount decimal.Decimal
}

// Gateway is a registered payment gateway
type Gateway struct {
	ID      string
	Title   string
	Enabled bool
}

// Gateways is the store's payment gateway registry
type Gateways []Gateway

// Lookup finds a gateway by payment method id
func (g Gateways) Lookup(id string) (Gateway, bool) {
	if id == "" {
		return Gateway{}, false
	}
	for _, gw := range g {
		if gw.ID == id {
			return gw, true
		}
	}
	return Gateway{}, false
}
