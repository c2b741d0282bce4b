package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDateQuery(t *testing.T) {
	ts := time.Date(2015, time.May, 5, 13, 7, 9, 0, time.UTC)
	d := NewDateQuery(ts, OnOrAfter)

	assert.Equal(t, DateQuery{Year: 2015, Month: 5, Day: 5, Hour: 13, Minute: 7, Second: 9, Compare: OnOrAfter}, d)
	assert.Equal(t, "2015-05-05 13:07:09", d.String())
	assert.True(t, d.Time(time.UTC).Equal(ts))
}

func TestDateQuery_Matches(t *testing.T) {
	boundary := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	before := boundary.Add(-time.Second)
	after := boundary.Add(time.Second)

	tests := []struct {
		cmp     Compare
		created time.Time
		want    bool
	}{
		{OnOrAfter, boundary, true},
		{OnOrAfter, before, false},
		{OnOrAfter, after, true},
		{OnOrBefore, boundary, true},
		{OnOrBefore, after, false},
		{OnOrBefore, before, true},
		{After, boundary, false},
		{After, after, true},
		{Before, boundary, false},
		{Before, before, true},
		{Compare("~"), boundary, false},
	}

	for _, tt := range tests {
		d := NewDateQuery(boundary, tt.cmp)
		assert.Equal(t, tt.want, d.Matches(tt.created), "%s %s", tt.cmp, tt.created)
	}
}

func TestQuery_Matches(t *testing.T) {
	created := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	o := &Order{ID: 1, RecordType: RecordTypeOrder, Status: "pending", Created: created}

	q := OrderQuery()
	assert.Equal(t, Unlimited, q.PerPage)
	assert.True(t, q.Matches(o))

	q.Status = "completed"
	assert.False(t, q.Matches(o))

	q = OrderQuery()
	q.Dates = []DateQuery{NewDateQuery(created.Add(-time.Hour), OnOrBefore)}
	assert.False(t, q.Matches(o))

	refund := &Order{ID: 2, RecordType: RecordTypeRefund, Created: created}
	assert.False(t, OrderQuery().Matches(refund))
}

func TestGateways_Lookup(t *testing.T) {
	gws := Gateways{{ID: "bacs", Title: "Direct bank transfer"}, {ID: "cod", Title: "Cash on delivery"}}

	gw, ok := gws.Lookup("cod")
	assert.True(t, ok)
	assert.Equal(t, "Cash on delivery", gw.Title)

	_, ok = gws.Lookup("stripe")
	assert.False(t, ok)

	_, ok = gws.Lookup("")
	assert.False(t, ok)
}
