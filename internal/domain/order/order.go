// Package order defines the records wooctl prints.
//
// These are read-through projections of store data, built per invocation.
// Each entity is an explicit allow-list of the fields meant to be exposed:
// store bookkeeping (item metadata, per-line tax breakdowns, formatted
// display strings) never has a field here to land in.
package order

import "encoding/json"

// NotAvailable is the payment title and id used when the order's payment
// method is no longer registered with the store
const NotAvailable = "N/A"

// Detail is the full record for a single order
type Detail struct {
	OrderID         int64          `json:"order_id"`
	Date            string         `json:"date"`
	Status          Status         `json:"status"`
	Customer        Customer       `json:"customer"`
	BillingAddress  Address        `json:"billing_address"`
	ShippingAddress Address        `json:"shipping_address"`
	Payment         Payment        `json:"payment"`
	Items           []LineItem     `json:"items"`
	Fees            []Fee          `json:"fees"`
	ShippingLines   []ShippingLine `json:"shipping_lines"`
	Refunds         []Refund       `json:"refunds"`
	Coupons         []Coupon       `json:"coupons"`
	Totals          Totals         `json:"totals"`
}

// MarshalJSON encodes the detail with every collection present as an array.
func (d Detail) MarshalJSON() ([]byte, error) {
	type plain Detail
	p := plain(d)
	if p.Items == nil {
		p.Items = []LineItem{}
	}
	if p.Fees == nil {
		p.Fees = []Fee{}
	}
	if p.ShippingLines == nil {
		p.ShippingLines = []ShippingLine{}
	}
	if p.Refunds == nil {
		p.Refunds = []Refund{}
	}
	if p.Coupons == nil {
		p.Coupons = []Coupon{}
	}
	if p.Totals.Taxes == nil {
		p.Totals.Taxes = []TaxTotal{}
	}
	return json.Marshal(p)
}

// Status pairs the canonical status code with the store's display label
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Customer identifies who placed the order. ID 0 is a guest checkout.
type Customer struct {
	ID int64  `json:"id"`
	IP string `json:"ip"`
}

// Address is a billing or shipping address. Missing fields are empty strings.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	State     string `json:"state"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Payment is the resolved payment gateway for an order
type Payment struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// UnknownPayment is used when the order's gateway is not registered
func UnknownPayment() Payment {
	return Payment{Title: NotAvailable, ID: NotAvailable}
}

// LineItem is a product line
type LineItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProductID   int64  `json:"product_id"`
	VariationID int64  `json:"variation_id"`
	Quantity    int64  `json:"quantity"`
	TaxClass    string `json:"tax_class"`
	Subtotal    Money  `json:"subtotal"`
	SubtotalTax Money  `json:"subtotal_tax"`
	Total       Money  `json:"total"`
	TotalTax    Money  `json:"total_tax"`
}

// Fee is a fee line
type Fee struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	TaxClass  string `json:"tax_class"`
	TaxStatus string `json:"tax_status"`
	Total     Money  `json:"total"`
	TotalTax  Money  `json:"total_tax"`
}

// ShippingLine is a shipping method line
type ShippingLine struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	MethodID string `json:"method_id"`
	Total    Money  `json:"total"`
	TotalTax Money  `json:"total_tax"`
}

// Coupon is a coupon applied to the order
type Coupon struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Discount    Money  `json:"discount"`
	DiscountTax Money  `json:"discount_tax"`
}

// Refund is a refund issued against the order
type Refund struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
	Amount Money  `json:"amount"`
}

// TaxTotal is the tax collected for one tax rate (line and shipping tax combined)
type TaxTotal struct {
	Code     string `json:"code"`
	RateID   int64  `json:"rate_id"`
	Label    string `json:"label"`
	Compound bool   `json:"compound"`
	Amount   Money  `json:"amount"`
}

// Totals are the order-level amounts
type Totals struct {
	Refunded   Money      `json:"refunded"`
	Discount   Money      `json:"discount"`
	Shipping   Money      `json:"shipping"`
	OrderTotal Money      `json:"order_total"`
	Taxes      []TaxTotal `json:"taxes"`
}
