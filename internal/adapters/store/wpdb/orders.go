package wpdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// Order item types in woocommerce_order_items
const (
	itemTypeLine     = "line_item"
	itemTypeFee      = "fee"
	itemTypeShipping = "shipping"
	itemTypeCoupon   = "coupon"
	itemTypeTax      = "tax"
)

// GetOrder loads a post by id. Posts that are not orders come back with
// only their identity filled in.
func (s *Store) GetOrder(ctx context.Context, id int64) (*store.Order, error) {
	o := &store.Order{ID: id}
	created := localTime{loc: s.loc}

	err := s.db.QueryRowContext(ctx,
		`SELECT post_type, post_status, post_date FROM `+s.tables.posts+` WHERE ID = ?`, id,
	).Scan(&o.RecordType, &o.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order #%d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post %d: %w", id, err)
	}
	o.Status = status.Normalize(o.Status)
	o.Created = created.Time
	if o.RecordType != store.RecordTypeOrder {
		return o, nil
	}

	meta, err := s.postMeta(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &amountParser{}
	o.CustomerID = meta.int("_customer_user")
	o.CustomerIP = meta["_customer_ip_address"]
	o.PaymentMethod = meta["_payment_method"]
	o.Billing = meta.address("_billing_")
	o.Shipping = meta.address("_shipping_")
	o.DiscountTotal = p.parse("_cart_discount", meta["_cart_discount"])
	o.ShippingTotal = p.parse("_order_shipping", meta["_order_shipping"])
	o.Total = p.parse("_order_total", meta["_order_total"])

	if err := s.loadItems(ctx, o, p); err != nil {
		return nil, err
	}
	if err := s.loadRefunds(ctx, o, p); err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, fmt.Errorf("order #%d: %w", id, p.err)
	}
	return o, nil
}

// postMeta holds a post's meta values; the first value of a key wins
type postMeta map[string]string

func (m postMeta) int(key string) int64 {
	return parseInt(m[key])
}

func (m postMeta) address(prefix string) store.Address {
	v := func(field string) string { return m[prefix+field] }
	return store.Address{
		FirstName: v("first_name"),
		LastName:  v("last_name"),
		Company:   v("company"),
		Address1:  v("address_1"),
		Address2:  v("address_2"),
		City:      v("city"),
		Postcode:  v("postcode"),
		Country:   v("country"),
		State:     v("state"),
		Email:     v("email"),
		Phone:     v("phone"),
	}
}

func (s *Store) postMeta(ctx context.Context, postID int64) (postMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT meta_key, meta_value FROM `+s.tables.postmeta+` WHERE post_id = ? ORDER BY meta_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta for post %d: %w", postID, err)
	}
	defer func() { _ = rows.Close() }()

	meta := postMeta{}
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta for post %d: %w", postID, err)
		}
		if _, seen := meta[key]; !seen {
			meta[key] = value.String
		}
	}
	return meta, rows.Err()
}

type orderItem struct {
	id   int64
	name string
	typ  string
	meta itemMeta
}

// itemMeta is an order item's meta. Keys starting with "_" are internal.
type itemMeta struct {
	values  map[string]string
	entries []store.Meta
}

func (m itemMeta) get(key string) string {
	return m.values[key]
}

// visible returns the entries that are neither internal nor in known
func (m itemMeta) visible(known ...string) []store.Meta {
	out := []store.Meta{}
	for _, e := range m.entries {
		if strings.HasPrefix(e.Key, "_") || contains(known, e.Key) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) loadItems(ctx context.Context, o *store.Order, p *amountParser) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_item_id, order_item_name, order_item_type
		FROM `+s.tables.items+`
		WHERE order_id = ?
		ORDER BY order_item_id
	`, o.ID)
	if err != nil {
		return fmt.Errorf("failed to load items for order #%d: %w", o.ID, err)
	}

	var items []*orderItem
	byID := map[int64]*orderItem{}
	for rows.Next() {
		it := &orderItem{meta: itemMeta{values: map[string]string{}}}
		if err := rows.Scan(&it.id, &it.name, &it.typ); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
		byID[it.id] = it
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load items for order #%d: %w", o.ID, err)
	}
	if len(items) == 0 {
		return nil
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT m.order_item_id, m.meta_id, m.meta_key, m.meta_value
		FROM `+s.tables.itemmeta+` m
		JOIN `+s.tables.items+` i ON i.order_item_id = m.order_item_id
		WHERE i.order_id = ?
		ORDER BY m.meta_id
	`, o.ID)
	if err != nil {
		return fmt.Errorf("failed to load item meta for order #%d: %w", o.ID, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			itemID, metaID int64
			key            string
			value          sql.NullString
		)
		if err := rows.Scan(&itemID, &metaID, &key, &value); err != nil {
			return fmt.Errorf("failed to scan item meta: %w", err)
		}
		it, ok := byID[itemID]
		if !ok {
			continue
		}
		if _, seen := it.meta.values[key]; !seen {
			it.meta.values[key] = value.String
		}
		it.meta.entries = append(it.meta.entries, store.Meta{ID: metaID, Key: key, Value: value.String})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load item meta for order #%d: %w", o.ID, err)
	}

	for _, it := range items {
		switch it.typ {
		case itemTypeLine:
			o.LineItems = append(o.LineItems, lineItem(it, p))
		case itemTypeFee:
			o.Fees = append(o.Fees, fee(it, p))
		case itemTypeShipping:
			o.ShippingLines = append(o.ShippingLines, shippingLine(it, p))
		case itemTypeCoupon:
			o.Coupons = append(o.Coupons, coupon(it, p))
		case itemTypeTax:
			o.TaxLines = append(o.TaxLines, taxLine(it, p))
		}
	}
	return nil
}

func lineItem(it *orderItem, p *amountParser) store.LineItem {
	m := it.meta
	return store.LineItem{
		ID:          it.id,
		Name:        it.name,
		ProductID:   parseInt(m.get("_product_id")),
		VariationID: parseInt(m.get("_variation_id")),
		Quantity:    parseInt(m.get("_qty")),
		TaxClass:    m.get("_tax_class"),
		Subtotal:    p.parse("_line_subtotal", m.get("_line_subtotal")),
		SubtotalTax: p.parse("_line_subtotal_tax", m.get("_line_subtotal_tax")),
		Total:       p.parse("_line_total", m.get("_line_total")),
		TotalTax:    p.parse("_line_tax", m.get("_line_tax")),
		Taxes:       p.taxData("_line_tax_data", m.get("_line_tax_data")),
		MetaData:    m.visible(),
	}
}

func fee(it *orderItem, p *amountParser) store.Fee {
	m := it.meta
	return store.Fee{
		ID:        it.id,
		Name:      it.name,
		TaxClass:  m.get("_tax_class"),
		TaxStatus: m.get("_tax_status"),
		Total:     p.parse("_line_total", m.get("_line_total")),
		TotalTax:  p.parse("_line_tax", m.get("_line_tax")),
		Taxes:     p.taxData("_line_tax_data", m.get("_line_tax_data")),
		MetaData:  m.visible(),
	}
}

func shippingLine(it *orderItem, p *amountParser) store.ShippingLine {
	m := it.meta
	return store.ShippingLine{
		ID:          it.id,
		MethodTitle: it.name,
		MethodID:    m.get("method_id"),
		Total:       p.parse("cost", m.get("cost")),
		TotalTax:    p.parse("total_tax", m.get("total_tax")),
		Taxes:       p.taxData("taxes", m.get("taxes")),
		MetaData:    m.visible("method_id", "instance_id", "cost", "total_tax", "taxes"),
	}
}

func coupon(it *orderItem, p *amountParser) store.Coupon {
	m := it.meta
	return store.Coupon{
		ID:          it.id,
		Code:        it.name,
		Discount:    p.parse("discount_amount", m.get("discount_amount")),
		DiscountTax: p.parse("discount_amount_tax", m.get("discount_amount_tax")),
		MetaData:    m.visible("discount_amount", "discount_amount_tax", "coupon_data"),
	}
}

func taxLine(it *orderItem, p *amountParser) store.TaxLine {
	m := it.meta
	compound := m.get("compound")
	return store.TaxLine{
		ID:               it.id,
		RateCode:         it.name,
		RateID:           parseInt(m.get("rate_id")),
		Label:            m.get("label"),
		Compound:         compound == "1" || compound == "yes",
		TaxTotal:         p.parse("tax_amount", m.get("tax_amount")),
		ShippingTaxTotal: p.parse("shipping_tax_amount", m.get("shipping_tax_amount")),
		MetaData:         m.visible("rate_id", "label", "compound", "tax_amount", "shipping_tax_amount", "rate_percent"),
	}
}

// loadRefunds reads the order's refund posts, newest first
func (s *Store) loadRefunds(ctx context.Context, o *store.Order, p *amountParser) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ID, post_excerpt FROM `+s.tables.posts+`
		WHERE post_parent = ? AND post_type = ?
		ORDER BY ID DESC
	`, o.ID, store.RecordTypeRefund)
	if err != nil {
		return fmt.Errorf("failed to load refunds for order #%d: %w", o.ID, err)
	}

	var refunds []store.Refund
	for rows.Next() {
		var r store.Refund
		var reason sql.NullString
		if err := rows.Scan(&r.ID, &reason); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan refund: %w", err)
		}
		r.Reason = reason.String
		refunds = append(refunds, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load refunds for order #%d: %w", o.ID, err)
	}

	for i := range refunds {
		meta, err := s.postMeta(ctx, refunds[i].ID)
		if err != nil {
			return err
		}
		if refunds[i].Reason == "" {
			refunds[i].Reason = meta["_refund_reason"]
		}
		refunds[i].Amount = p.parse("_refund_amount", meta["_refund_amount"]).Abs()
	}
	o.Refunds = refunds
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
