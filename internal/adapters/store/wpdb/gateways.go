package wpdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/elliotchance/phpserialize"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
)

// gatewayOrderOption lists installed gateways with their sort position
const gatewayOrderOption = "woocommerce_gateway_order"

// coreGateways are the gateways WooCommerce ships with, and the titles it
// uses until an administrator saves settings for them
var coreGateways = []store.Gateway{
	{ID: "bacs", Title: "Direct bank transfer"},
	{ID: "cheque", Title: "Check payments"},
	{ID: "cod", Title: "Cash on delivery"},
	{ID: "paypal", Title: "PayPal"},
}

// PaymentGateways lists the gateways from woocommerce_gateway_order, each
// resolved against its woocommerce_<id>_settings option. Without a saved
// order the core gateways are reported. Ids that are neither core gateways
// nor have saved settings are left over from removed plugins and skipped.
func (s *Store) PaymentGateways(ctx context.Context) (store.Gateways, error) {
	ids, err := s.gatewayOrder(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		for _, g := range coreGateways {
			ids = append(ids, g.ID)
		}
	}

	gateways := make(store.Gateways, 0, len(ids))
	for _, id := range ids {
		title, core := defaultTitle(id)
		g := store.Gateway{ID: id, Title: title}

		raw, ok, err := s.option(ctx, "woocommerce_"+id+"_settings")
		if err != nil {
			return nil, err
		}
		if !ok && !core {
			s.logger.Debug("Skipping gateway without settings", "gateway", id)
			continue
		}
		if ok {
			settings, err := phpserialize.UnmarshalAssociativeArray([]byte(raw))
			if err != nil {
				s.logger.Warn("Skipping unreadable gateway settings", "gateway", id, "error", err)
			} else {
				if title := phpString(settings["title"]); title != "" {
					g.Title = title
				}
				g.Enabled = phpString(settings["enabled"]) == "yes"
			}
		}
		gateways = append(gateways, g)
	}
	return gateways, nil
}

func (s *Store) gatewayOrder(ctx context.Context) ([]string, error) {
	raw, ok, err := s.option(ctx, gatewayOrderOption)
	if err != nil || !ok {
		return nil, err
	}
	positions, err := phpserialize.UnmarshalAssociativeArray([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid %s option: %w", gatewayOrderOption, err)
	}

	type entry struct {
		id  string
		pos int64
	}
	entries := make([]entry, 0, len(positions))
	for k, v := range positions {
		entries = append(entries, entry{id: phpString(k), pos: parseInt(phpString(v))})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pos != entries[j].pos {
			return entries[i].pos < entries[j].pos
		}
		return entries[i].id < entries[j].id
	})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

// option reads a wp_options value
func (s *Store) option(ctx context.Context, name string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT option_value FROM `+s.tables.options+` WHERE option_name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read option %s: %w", name, err)
	}
	return value.String, true, nil
}

// defaultTitle reports the title WooCommerce uses for a core gateway
func defaultTitle(id string) (string, bool) {
	for _, g := range coreGateways {
		if g.ID == id {
			return g.Title, true
		}
	}
	return id, false
}
