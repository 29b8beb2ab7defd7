package core

import (
	"time"
)

// DateLayout is the wire format for user-entered dates.
const DateLayout = "2006-01-02"

// nanosPerMilli converts the ledger service's nanosecond-epoch
// timestamps to and from epoch milliseconds.
const nanosPerMilli = 1_000_000

// Date is a calendar date pinned to midnight UTC. The ledger service
// stores timestamps at nanosecond resolution; the client only ever
// shows the date portion.
type Date struct {
	time.Time
}

// NewDate creates a Date at midnight UTC of the given day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// EncodeDate converts a date to the service's nanosecond-epoch integer:
// the epoch-millisecond value of midnight UTC scaled by one million.
func EncodeDate(d Date) int64 {
	return d.UnixMilli() * nanosPerMilli
}

// DecodeDate truncates a nanosecond-epoch timestamp to its calendar
// date. Time-of-day information is discarded and does not round trip;
// values produced by EncodeDate decode to the identical date.
func DecodeDate(ns int64) Date {
	t := time.UnixMilli(ns / nanosPerMilli).UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}
