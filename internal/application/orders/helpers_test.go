package orders

import (
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
)

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(st store.Store) *Service {
	return NewService(st, testLogger(), Options{
		Location:      time.UTC,
		PriceDecimals: 2,
		Now:           func() time.Time { return testNow },
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// sampleOrder is a processing order with one of every line type
func sampleOrder() *store.Order {
	return &store.Order{
		ID:         501,
		RecordType: store.RecordTypeOrder,
		Status:     "processing",
		Created:    time.Date(2024, time.May, 5, 13, 0, 0, 0, time.UTC),
		CustomerID: 12,
		CustomerIP: "203.0.113.7",
		Billing: store.Address{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Address1:  "12 Analytical Row",
			City:      "London",
			Postcode:  "N1 9GU",
			Country:   "GB",
			Email:     "ada@example.com",
			Phone:     "0207 000 0000",
		},
		Shipping: store.Address{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Address1:  "12 Analytical Row",
			City:      "London",
			Postcode:  "N1 9GU",
			Country:   "GB",
		},
		PaymentMethod: "bacs",
		LineItems: []store.LineItem{{
			ID:          11,
			Name:        "Difference Engine",
			ProductID:   90,
			Quantity:    2,
			Subtotal:    dec("40"),
			SubtotalTax: dec("8"),
			Total:       dec("36"),
			TotalTax:    dec("7.2"),
			Taxes:       []store.LineTax{{RateID: 1, Total: dec("7.2"), Subtotal: dec("8")}},
			MetaData:    []store.Meta{{ID: 1, Key: "_reduced_stock", Value: "2"}},
		}},
		Fees: []store.Fee{{
			ID:        12,
			Name:      "Gift wrap",
			TaxStatus: "taxable",
			Total:     dec("2.5"),
			TotalTax:  dec("0.5"),
			MetaData:  []store.Meta{{ID: 2, Key: "_internal", Value: "x"}},
		}},
		ShippingLines: []store.ShippingLine{
			{ID: 13, MethodTitle: "Local pickup", MethodID: "local_pickup", Total: dec("0")},
			{ID: 14, MethodTitle: "Flat rate", MethodID: "flat_rate", Total: dec("5"), TotalTax: dec("1")},
		},
		Coupons: []store.Coupon{{
			ID:          15,
			Code:        "spring",
			Discount:    dec("4"),
			DiscountTax: dec("0.8"),
			MetaData:    []store.Meta{{ID: 3, Key: "coupon_data", Value: map[string]any{"id": 4}}},
		}},
		TaxLines: []store.TaxLine{{
			ID:               16,
			RateCode:         "GB-VAT-1",
			RateID:           1,
			Label:            "VAT",
			TaxTotal:         dec("7.7"),
			ShippingTaxTotal: dec("1"),
		}},
		Refunds: []store.Refund{
			{ID: 600, Reason: "Damaged", Amount: dec("3")},
			{ID: 601, Reason: "", Amount: dec("1.5")},
		},
		DiscountTotal: dec("4"),
		ShippingTotal: dec("5"),
		Total:         dec("52.2"),
	}
}
