package store

import (
	"fmt"
	"time"
)

// DateLayout is the store's datetime format (post_date)
const DateLayout = "2006-01-02 15:04:05"

// Unlimited is the PerPage value for an unrestricted page size
const Unlimited = -1

// Compare is a date constraint operator
type Compare string

// Date comparison operators
const (
	OnOrAfter  Compare = ">="
	OnOrBefore Compare = "<="
	After      Compare = ">"
	Before     Compare = "<"
)

// DateQuery constrains the creation time at second granularity.
// Components are calendar values in the store's timezone.
type DateQuery struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Compare Compare
}

// NewDateQuery decomposes t into a date constraint. Convert t to the
// store's timezone first.
func NewDateQuery(t time.Time, cmp Compare) DateQuery {
	return DateQuery{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Compare: cmp,
	}
}

// String formats the boundary in DateLayout
func (d DateQuery) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// Time returns the boundary as an instant in loc
func (d DateQuery) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc)
}

// Matches reports whether a store-local creation time satisfies the constraint
func (d DateQuery) Matches(created time.Time) bool {
	// Both sides share DateLayout, so string order is time order
	c := created.Format(DateLayout)
	b := d.String()
	switch d.Compare {
	case OnOrAfter:
		return c >= b
	case OnOrBefore:
		return c <= b
	case After:
		return c > b
	case Before:
		return c < b
	default:
		return false
	}
}

// Query selects records from the store
type Query struct {
	RecordType string
	Status     string // canonical; empty means any status
	PerPage    int
	Dates      []DateQuery
}

// OrderQuery returns a query for every order regardless of status
func OrderQuery() Query {
	return Query{RecordType: RecordTypeOrder, PerPage: Unlimited}
}

// Matches applies the query to an order in memory
func (q Query) Matches(o *Order) bool {
	if q.RecordType != "" && o.RecordType != q.RecordType {
		return false
	}
	if q.Status != "" && o.Status != q.Status {
		return false
	}
	for _, d := range q.Dates {
		if !d.Matches(o.Created) {
			return false
		}
	}
	return true
}
