package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/memstore"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
)

// countingLeads wraps the memory store and counts inserts.
type countingLeads struct {
	*memstore.Leads
	inserts int
	err     error
}

func (c *countingLeads) Insert(ctx context.Context, l *model.Lead) error {
	c.inserts++
	if c.err != nil {
		return c.err
	}
	return c.Leads.Insert(ctx, l)
}

func newLeadFixture(t *testing.T) (*LeadService, *countingLeads, *memstore.DB) {
	t.Helper()
	db := memstore.New()
	leads := &countingLeads{Leads: db.Leads()}
	return NewLeadService(leads, db.Listings(), zap.NewNop()), leads, db
}

func seedListing(t *testing.T, db *memstore.DB, l model.Listing) *model.Listing {
	t.Helper()
	if l.ID == "" {
		l.ID = "7d0c2c9e-2f4e-4a55-9d38-000000000001"
	}
	if l.Status == "" {
		l.Status = model.StatusActive
	}
	require.NoError(t, db.Listings().Create(context.Background(), &l))
	return &l
}

func TestSubmitContactBlankNameMakesNoStoreCall(t *testing.T) {
	svc, leads, _ := newLeadFixture(t)

	_, err := svc.SubmitContact(context.Background(), ContactForm{
		Name:    "   ",
		Email:   "jane@example.com",
		Message: "Hello",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Equal(t, 0, leads.inserts)
}

func TestSubmitContactFieldErrors(t *testing.T) {
	svc, leads, _ := newLeadFixture(t)
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	_, err := svc.SubmitContact(context.Background(), ContactForm{
		Name:  string(long),
		Email: "not-an-email",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name must be at most 100 characters", verr.Fields["name"])
	assert.Equal(t, "Invalid email address", verr.Fields["email"])
	assert.Equal(t, "Message is required", verr.Fields["message"])
	assert.Equal(t, 0, leads.inserts)
}

func TestLeadFormLengthLimits(t *testing.T) {
	svc, leads, db := newLeadFixture(t)
	ctx := context.Background()
	listing := seedListing(t, db, model.Listing{Title: "Villa", Address: "1 Lake Dr"})
	longMessage := strings.Repeat("m", 1001)
	longEmail := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 63) + "." + strings.Repeat("c", 63) + "." + strings.Repeat("d", 59) + ".com"
	require.Len(t, longEmail, 256)

	cases := map[string]func() error{
		"contact message": func() error {
			_, err := svc.SubmitContact(ctx, ContactForm{Name: "Jane", Email: "jane@example.com", Message: longMessage})
			return err
		},
		"showing message": func() error {
			_, err := svc.RequestShowing(ctx, listing.ID, ShowingRequest{Name: "Sam", Email: "sam@example.com", Phone: "5125550100", Message: longMessage})
			return err
		},
		"valuation message": func() error {
			_, err := svc.RequestValuation(ctx, ValuationRequest{Email: "owner@example.com", Address: "42 Hill Rd", Message: longMessage})
			return err
		},
		"contact email": func() error {
			_, err := svc.SubmitContact(ctx, ContactForm{Name: "Jane", Email: longEmail, Message: "Hi"})
			return err
		},
		"showing email": func() error {
			_, err := svc.RequestShowing(ctx, listing.ID, ShowingRequest{Name: "Sam", Email: longEmail, Phone: "5125550100"})
			return err
		},
		"valuation email": func() error {
			_, err := svc.RequestValuation(ctx, ValuationRequest{Email: longEmail, Address: "42 Hill Rd"})
			return err
		},
	}
	for name, submit := range cases {
		t.Run(name, func(t *testing.T) {
			var verr *ValidationError
			require.ErrorAs(t, submit(), &verr)
			field := name[strings.LastIndex(name, " ")+1:]
			assert.Contains(t, verr.Fields, field)
			assert.Equal(t, 0, leads.inserts)
		})
	}

	_, err := svc.SubmitContact(ctx, ContactForm{Name: "Jane", Email: "jane@example.com", Message: strings.Repeat("m", 1000)})
	require.NoError(t, err)
	assert.Equal(t, 1, leads.inserts)
}

func TestSubmitContactCreatesGeneralLead(t *testing.T) {
	svc, leads, _ := newLeadFixture(t)
	ctx := context.Background()

	lead, err := svc.SubmitContact(ctx, ContactForm{
		Name:    " Jane Doe ",
		Email:   "jane@example.com",
		Message: "Looking to buy in Tarrytown",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", lead.Name)
	assert.Nil(t, lead.PropertyID)
	assert.Nil(t, lead.Phone)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, SourceContact, ClassifyLead(*lead))
	assert.Equal(t, 1, leads.inserts)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].PropertyTitle)
}

func TestSubmitContactStoreFailure(t *testing.T) {
	svc, leads, _ := newLeadFixture(t)
	leads.err = errors.New("connection refused")

	_, err := svc.SubmitContact(context.Background(), ContactForm{
		Name: "Jane", Email: "jane@example.com", Message: "Hi",
	})
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestRequestShowing(t *testing.T) {
	svc, _, db := newLeadFixture(t)
	ctx := context.Background()
	listing := seedListing(t, db, model.Listing{Title: "Modern Villa", Address: "1 Lake Dr, Westlake Hills, Austin"})

	lead, err := svc.RequestShowing(ctx, listing.ID, ShowingRequest{
		Name:    "Sam",
		Email:   "sam@example.com",
		Phone:   "512-555-0100",
		Message: "Weekend please",
	})
	require.NoError(t, err)
	assert.Equal(t, listing.ID, model.Deref(lead.PropertyID))
	assert.Equal(t, "Requesting showing for: Modern Villa\n\nAdditional message: Weekend please", model.Deref(lead.Message))
	assert.Equal(t, SourcePropertyShowing, ClassifyLead(*lead))

	joined, err := svc.List(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "Modern Villa", model.Deref(joined[0].PropertyTitle))
}

func TestRequestShowingWithoutMessageOrTitle(t *testing.T) {
	svc, _, db := newLeadFixture(t)
	listing := seedListing(t, db, model.Listing{Address: "9 Oak St, Tarrytown, Austin"})

	lead, err := svc.RequestShowing(context.Background(), listing.ID, ShowingRequest{
		Name: "Sam", Email: "sam@example.com", Phone: "5125550100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Requesting showing for: 9 Oak St, Tarrytown, Austin", model.Deref(lead.Message))
}

func TestRequestShowingRejects(t *testing.T) {
	svc, leads, db := newLeadFixture(t)
	ctx := context.Background()
	listing := seedListing(t, db, model.Listing{Title: "Villa", Address: "1 Lake Dr"})

	_, err := svc.RequestShowing(ctx, listing.ID, ShowingRequest{Name: "Sam", Email: "sam@example.com", Phone: "555"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")

	valid := ShowingRequest{Name: "Sam", Email: "sam@example.com", Phone: "5125550100"}
	_, err = svc.RequestShowing(ctx, "7d0c2c9e-2f4e-4a55-9d38-0000000000ff", valid)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.RequestShowing(ctx, "not-a-uuid", valid)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, leads.inserts)
}

func TestRequestValuation(t *testing.T) {
	svc, _, _ := newLeadFixture(t)

	lead, err := svc.RequestValuation(context.Background(), ValuationRequest{
		Email:   "owner@example.com",
		Address: "42 Hill Rd, Barton Creek, Austin",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ValuationLeadName, lead.Name)
	assert.Equal(t, model.LeadKindValuation, lead.Kind())
	assert.Equal(t, SourceValuation, ClassifyLead(*lead))
	assert.Contains(t, model.Deref(lead.Message), "42 Hill Rd")

	_, err = svc.RequestValuation(context.Background(), ValuationRequest{Email: "owner@example.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Address is required", verr.Fields["address"])
}

func TestDeleteLead(t *testing.T) {
	svc, _, _ := newLeadFixture(t)
	ctx := context.Background()
	lead, err := svc.SubmitContact(ctx, ContactForm{Name: "Jane", Email: "jane@example.com", Message: "Hi"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, lead.ID))
	assert.ErrorIs(t, svc.Delete(ctx, lead.ID), repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "bogus"), repository.ErrNotFound)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
