// Package filter narrows listing collections for the public gallery and the
// admin console. Everything here is pure and works on in-memory slices.
package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

// PriceRange is an inclusive price constraint. A nil Max means "and above".
type PriceRange struct {
	Min float64
	Max *float64
	Set bool
}

// ParsePriceRange reads the filter bar encoding "min-max" or "min-".
// "all", "" and anything malformed impose no constraint.
func ParsePriceRange(s string) PriceRange {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return PriceRange{}
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return PriceRange{}
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil || !finite(min) || min < 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: min, Set: true}
	if hi = strings.TrimSpace(hi); hi != "" {
		max, err := strconv.ParseFloat(hi, 64)
		if err != nil || !finite(max) || max < min {
			return PriceRange{}
		}
		r.Max = &max
	}
	return r
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	if !r.Set {
		return true
	}
	if price < r.Min {
		return false
	}
	return r.Max == nil || price <= *r.Max
}

// ParseMinBeds reads the bed filter ("all", "3"). Non-numeric input is no
// constraint.
func ParseMinBeds(s string) model.OptionalInt {
	if strings.TrimSpace(s) == "all" {
		return model.OptionalInt{}
	}
	return model.ParseOptionalInt(s)
}

// Criteria is the public gallery filter.
type Criteria struct {
	Price        PriceRange
	Neighborhood string
	MinBeds      model.OptionalInt
	// Pocket selects pocket listings only; false selects public listings only.
	Pocket bool
}

// Neighborhood returns the first comma-delimited segment of an address.
func Neighborhood(address string) string {
	seg, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(seg)
}

// Match reports whether a single listing passes every constraint.
func (c Criteria) Match(l *model.Listing) bool {
	if l.IsPocket != c.Pocket {
		return false
	}
	if !c.Price.Contains(l.Price) {
		return false
	}
	if n := strings.TrimSpace(c.Neighborhood); n != "" && n != "all" {
		if !strings.Contains(strings.ToLower(Neighborhood(l.Address)), strings.ToLower(n)) {
			return false
		}
	}
	if c.MinBeds.Valid && !l.Bedrooms.AtLeast(c.MinBeds.Int) {
		return false
	}
	return true
}

// Apply returns the listings matching c, preserving their relative order.
func Apply(listings []model.Listing, c Criteria) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for i := range listings {
		if c.Match(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}
