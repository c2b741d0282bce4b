package wpdb

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/elliotchance/phpserialize"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
)

// localTime scans a DATETIME column holding store-local wall time.
// MySQL without parseTime yields []byte; go-sqlite3 yields time.Time in UTC.
type localTime struct {
	loc  *time.Location
	Time time.Time
}

func (t *localTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		if v.IsZero() {
			t.Time = time.Time{}
			return nil
		}
		t.Time = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), 0, t.loc)
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into a datetime", src)
	}
}

func (t *localTime) parse(s string) error {
	if s == "" || s == "0000-00-00 00:00:00" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(store.DateLayout, s, t.loc)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// amountParser keeps the first parse error so loaders read straight through
type amountParser struct {
	err error
}

func (p *amountParser) parse(field, s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fail(fmt.Errorf("invalid amount in %s: %q", field, s))
		return decimal.Zero
	}
	return d
}

func (p *amountParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// taxData decodes a serialized tax breakdown such as _line_tax_data:
// a:2:{s:5:"total";a:1:{i:1;s:4:"8.70";}s:8:"subtotal";a:1:{i:1;s:4:"8.70";}}
func (p *amountParser) taxData(field, raw string) []store.LineTax {
	out := []store.LineTax{}
	if raw == "" {
		return out
	}
	data, err := phpserialize.UnmarshalAssociativeArray([]byte(raw))
	if err != nil {
		p.fail(fmt.Errorf("invalid serialized %s: %w", field, err))
		return out
	}

	totals := phpArray(data["total"])
	subtotals := phpArray(data["subtotal"])

	ids := make([]int64, 0, len(totals))
	for k := range totals {
		ids = append(ids, parseInt(phpString(k)))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		key := strconv.FormatInt(id, 10)
		out = append(out, store.LineTax{
			RateID:   id,
			Total:    p.parse(field, phpString(lookup(totals, key))),
			Subtotal: p.parse(field, phpString(lookup(subtotals, key))),
		})
	}
	return out
}

// phpArray returns v as an associative array, or nil
func phpArray(v any) map[any]any {
	m, _ := v.(map[any]any)
	return m
}

// lookup finds a key that may have been decoded as int64 or string
func lookup(m map[any]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	if n, err := strconv.ParseInt(key, 10, 64); err == nil {
		if v, ok := m[n]; ok {
			return v
		}
	}
	return nil
}

// phpString renders a decoded scalar the way PHP would cast it to string
func phpString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
