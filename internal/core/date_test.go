package core

import (
	"testing"
	"time"
)

func TestDateRoundTrip(t *testing.T) {
	dates := []Date{
		NewDate(1970, 1, 1),
		NewDate(2024, 2, 29),
		NewDate(2025, 12, 31),
		NewDate(2000, 6, 15),
	}
	for _, d := range dates {
		got := DecodeDate(EncodeDate(d))
		if !got.Equal(d.Time) {
			t.Fatalf("round trip %s: got %s", d, got)
		}
	}
}

func TestEncodeDateScale(t *testing.T) {
	d := NewDate(1970, 1, 2)
	want := int64(24*60*60) * 1000 * 1_000_000
	if got := EncodeDate(d); got != want {
		t.Fatalf("EncodeDate = %d, want %d", got, want)
	}
}

func TestDecodeDateDiscardsTimeOfDay(t *testing.T) {
	noon := time.Date(2025, 3, 10, 12, 30, 45, 0, time.UTC)
	ns := noon.UnixMilli() * 1_000_000
	got := DecodeDate(ns)
	if !got.Equal(NewDate(2025, 3, 10).Time) {
		t.Fatalf("DecodeDate(%d) = %s, want 2025-03-10", ns, got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Equal(NewDate(2025, 1, 31).Time) {
		t.Fatalf("ParseDate = %s", d)
	}

	for _, bad := range []string{"", "31/01/2025", "2025-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) expected error", bad)
		}
	}
}
