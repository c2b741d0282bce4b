package order

import (
	"strconv"
)

// SummaryRow is the reduced per-order projection used by list output
type SummaryRow struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	CustomerID   int64  `json:"customer_id"`
	Status       string `json:"status"`
	Total        Money  `json:"total"`
	PaymentTitle string `json:"payment_title"`
	PaymentID    string `json:"payment_id"`
	ShippingName string `json:"shipping_name"`
	ShippingID   string `json:"shipping_id"`
}

// Summary field names, in output order
const (
	FieldID           = "id"
	FieldDate         = "date"
	FieldCustomerID   = "customer_id"
	FieldStatus       = "status"
	FieldTotal        = "total"
	FieldPaymentTitle = "payment_title"
	FieldPaymentID    = "payment_id"
	FieldShippingName = "shipping_name"
	FieldShippingID   = "shipping_id"
)

// Field is one named, display-formatted value of a row
type Field struct {
	Name  string
	Value string
}

// Fields returns the row's fields in output order, formatted for display.
// Names match the JSON keys.
func (r SummaryRow) Fields() []Field {
	return []Field{
		{FieldID, strconv.FormatInt(r.ID, 10)},
		{FieldDate, r.Date},
		{FieldCustomerID, strconv.FormatInt(r.CustomerID, 10)},
		{FieldStatus, r.Status},
		{FieldTotal, r.Total.String()},
		{FieldPaymentTitle, r.PaymentTitle},
		{FieldPaymentID, r.PaymentID},
		{FieldShippingName, r.ShippingName},
		{FieldShippingID, r.ShippingID},
	}
}
