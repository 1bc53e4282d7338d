package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

// ErrInvalidWindow is returned for an analytics window other than 7, 30 or
// 90 days.
var ErrInvalidWindow = errors.New("window must be 7, 30 or 90 days")

// LeadSource is the analytics classification of a lead.
type LeadSource string

const (
	SourceValuation       LeadSource = "valuation"
	SourcePropertyShowing LeadSource = "property_showing"
	SourceContact         LeadSource = "contact"
)

// ClassifyLead puts valuation wording first, then a listing reference, and
// calls everything else a contact.
func ClassifyLead(l model.Lead) LeadSource {
	text := strings.ToLower(l.Name + "\n" + model.Deref(l.Message))
	switch {
	case strings.Contains(text, "valuation"), strings.Contains(text, "home value"):
		return SourceValuation
	case l.PropertyID != nil && *l.PropertyID != "":
		return SourcePropertyShowing
	default:
		return SourceContact
	}
}

// SourceCounts tallies leads per source.
type SourceCounts struct {
	Valuation       int `json:"valuation"`
	PropertyShowing int `json:"property_showing"`
	Contact         int `json:"contact"`
}

func (c *SourceCounts) add(s LeadSource) {
	switch s {
	case SourceValuation:
		c.Valuation++
	case SourcePropertyShowing:
		c.PropertyShowing++
	default:
		c.Contact++
	}
}

// Percentages rounds each share of the total to a whole percent. An empty
// tally yields zeros.
func (c SourceCounts) Percentages() SourceCounts {
	sum := c.Valuation + c.PropertyShowing + c.Contact
	if sum < 1 {
		sum = 1
	}
	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(sum) * 100))
	}
	return SourceCounts{
		Valuation:       pct(c.Valuation),
		PropertyShowing: pct(c.PropertyShowing),
		Contact:         pct(c.Contact),
	}
}

type AnalyticsReport struct {
	WindowDays       int          `json:"window_days"`
	TotalLeads       int          `json:"total_leads"`
	LeadsLast7Days   int          `json:"leads_last_7_days"`
	LeadsLast30Days  int          `json:"leads_last_30_days"`
	TotalProperties  int          `json:"total_properties"`
	ActiveProperties int          `json:"active_properties"`
	PocketListings   int          `json:"pocket_listings"`
	LeadsInWindow    int          `json:"leads_in_window"`
	BySource         SourceCounts `json:"by_source"`
	SourcePercent    SourceCounts `json:"source_percent"`
	RecentLeads      []model.Lead `json:"recent_leads"`
}

type LeadStats interface {
	Count(ctx context.Context, since time.Time) (int, error)
	ListSince(ctx context.Context, t time.Time) ([]model.Lead, error)
	Recent(ctx context.Context, n int) ([]model.Lead, error)
}

type ListingStats interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status model.Status) (int, error)
	CountPocket(ctx context.Context) (int, error)
}

type AnalyticsService struct {
	leads    LeadStats
	listings ListingStats
	now      func() time.Time
}

func NewAnalyticsService(leads LeadStats, listings ListingStats) *AnalyticsService {
	return &AnalyticsService{leads: leads, listings: listings, now: time.Now}
}

// WithClock replaces the time source used for window thresholds.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// windowStart is the start of the day windowDays before now.
func windowStart(now time.Time, days int) time.Time {
	t := now.AddDate(0, 0, -days)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Report runs every count and list query concurrently. Any failure fails the
// whole report.
func (s *AnalyticsService) Report(ctx context.Context, days int) (*AnalyticsReport, error) {
	switch days {
	case 7, 30, 90:
	default:
		return nil, ErrInvalidWindow
	}

	now := s.now()
	rep := &AnalyticsReport{WindowDays: days}
	var windowLeads []model.Lead

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rep.TotalLeads, err = s.leads.Count(gctx, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		rep.LeadsLast7Days, err = s.leads.Count(gctx, windowStart(now, 7))
		return err
	})
	g.Go(func() (err error) {
		rep.LeadsLast30Days, err = s.leads.Count(gctx, windowStart(now, 30))
		return err
	})
	g.Go(func() (err error) {
		rep.TotalProperties, err = s.listings.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		rep.ActiveProperties, err = s.listings.CountByStatus(gctx, model.StatusActive)
		return err
	})
	g.Go(func() (err error) {
		rep.PocketListings, err = s.listings.CountPocket(gctx)
		return err
	})
	g.Go(func() (err error) {
		windowLeads, err = s.leads.ListSince(gctx, windowStart(now, days))
		return err
	})
	g.Go(func() (err error) {
		rep.RecentLeads, err = s.leads.Recent(gctx, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("AnalyticsService.Report: %w", err)
	}

	for _, l := range windowLeads {
		rep.BySource.add(ClassifyLead(l))
	}
	rep.LeadsInWindow = len(windowLeads)
	rep.SourcePercent = rep.BySource.Percentages()
	if rep.RecentLeads == nil {
		rep.RecentLeads = []model.Lead{}
	}
	return rep, nil
}
