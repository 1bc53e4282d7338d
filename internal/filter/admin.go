package filter

import (
	"strings"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

// Visibility is the admin table's pocket/public/all switch.
type Visibility string

const (
	VisibilityAll    Visibility = "all"
	VisibilityPocket Visibility = "pocket"
	VisibilityPublic Visibility = "public"
)

// ParseVisibility treats unknown values as all.
func ParseVisibility(s string) Visibility {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityPocket, VisibilityPublic:
		return v
	}
	return VisibilityAll
}

// AdminQuery is the admin listing table filter. All parts are conjunctive.
type AdminQuery struct {
	Search     string
	Status     string
	Visibility Visibility
}

func (q AdminQuery) Match(l *model.Listing) bool {
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		if !strings.Contains(strings.ToLower(l.Title), s) && !strings.Contains(strings.ToLower(l.Address), s) {
			return false
		}
	}
	if q.Status != "" && q.Status != "all" && string(l.Status) != q.Status {
		return false
	}
	switch q.Visibility {
	case VisibilityPocket:
		return l.IsPocket
	case VisibilityPublic:
		return !l.IsPocket
	}
	return true
}

// ApplyAdmin returns the listings matching q in their original order.
func ApplyAdmin(listings []model.Listing, q AdminQuery) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for i := range listings {
		if q.Match(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}
