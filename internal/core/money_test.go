package core

import (
	"math"
	"testing"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
		ok  bool
	}{
		{0, 0, true},
		{1, 100, true},
		{12.34, 1234, true},
		{12.345, 1235, true}, // half away from zero
		{-12.345, -1235, true},
		{-5, -500, true},
		{0.004, 0, true},
		{0.005, 1, true},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{math.Inf(-1), 0, false},
		{1e300, 0, false},
	}
	for _, tc := range cases {
		got, err := ToMinorUnits(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("ToMinorUnits(%v) = %d, %v; want %d", tc.in, got, err, tc.out)
			}
		} else if err == nil {
			t.Fatalf("ToMinorUnits(%v) expected error", tc.in)
		}
	}
}

func TestMoneyRoundTrip(t *testing.T) {
	for _, x := range []int64{0, 1, 100, 999999, -500} {
		got, err := ToMinorUnits(ToDisplay(x))
		if err != nil {
			t.Fatalf("round trip %d: %v", x, err)
		}
		if got != x {
			t.Fatalf("round trip %d: got %d", x, got)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{" 2.50 ", 250, true},
		{"-5", -500, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("ParseAmount(%q) = %d, %v; want %d", tc.in, got, err, tc.out)
			}
		} else if err == nil {
			t.Fatalf("ParseAmount(%q) expected error", tc.in)
		}
	}
}
