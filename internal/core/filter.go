package core

import (
	"strings"
)

type (
	// FilterInput is raw, possibly empty, user input for a transaction
	// query. Every field is optional; empty strings mean unconstrained.
	FilterInput struct {
		StartDate     string
		EndDate       string
		MinAmount     string
		MaxAmount     string
		Category      string
		PaymentMethod string
	}

	// FilterSpec is the canonical query filter sent to the ledger
	// service. A nil field is unconstrained. The client does not check
	// that StartTime <= EndTime; an inverted range simply yields an
	// empty result.
	FilterSpec struct {
		StartTime     *int64
		EndTime       *int64
		MinAmount     *int64
		MaxAmount     *int64
		Category      *string
		PaymentMethod *string
	}
)

// Normalize validates and converts raw input into a canonical
// FilterSpec. It is pure: no field of the result is ever partially
// normalized, and nothing is dispatched on failure.
//
// An amount filter that parses to exactly zero is treated as
// unconstrained, the same as an empty field. A minimum (or maximum) of
// exactly zero is therefore not expressible; this mirrors the shipped
// behavior and is kept deliberately.
func (in FilterInput) Normalize() (FilterSpec, error) {
	var spec FilterSpec

	if s := strings.TrimSpace(in.StartDate); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return FilterSpec{}, err
		}
		ns := EncodeDate(d)
		spec.StartTime = &ns
	}
	if s := strings.TrimSpace(in.EndDate); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return FilterSpec{}, err
		}
		ns := EncodeDate(d)
		spec.EndTime = &ns
	}

	min, err := normalizeAmount(in.MinAmount)
	if err != nil {
		return FilterSpec{}, err
	}
	spec.MinAmount = min

	max, err := normalizeAmount(in.MaxAmount)
	if err != nil {
		return FilterSpec{}, err
	}
	spec.MaxAmount = max

	if s := strings.TrimSpace(in.Category); s != "" {
		spec.Category = &s
	}
	if s := strings.TrimSpace(in.PaymentMethod); s != "" {
		spec.PaymentMethod = &s
	}

	return spec, nil
}

func normalizeAmount(raw string) (*int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	minor, err := ParseAmount(s)
	if err != nil {
		return nil, err
	}
	if minor == 0 {
		// Zero is indistinguishable from "no filter".
		return nil, nil
	}
	return &minor, nil
}

// IsUnconstrained reports whether the filter applies no constraints.
func (s FilterSpec) IsUnconstrained() bool {
	return s.StartTime == nil && s.EndTime == nil &&
		s.MinAmount == nil && s.MaxAmount == nil &&
		s.Category == nil && s.PaymentMethod == nil
}
