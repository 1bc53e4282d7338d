package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
)

// LeadStore persists leads.
type LeadStore interface {
	Insert(ctx context.Context, lead *model.Lead) error
	List(ctx context.Context) ([]model.LeadWithProperty, error)
	ListByProperty(ctx context.Context, propertyID string) ([]model.LeadWithProperty, error)
	Delete(ctx context.Context, id string) error
}

// ListingLookup resolves the listing a showing request is about.
type ListingLookup interface {
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}

// ContactForm is the general inquiry form.
type ContactForm struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" form:"phone" validate:"max=50"`
	Message string `json:"message" form:"message" validate:"required,max=1000"`
}

// ShowingRequest is the per-listing "schedule a showing" form.
type ShowingRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" form:"phone" validate:"required,min=10,max=50"`
	Message string `json:"message" form:"message" validate:"max=1000"`
}

// ValuationRequest asks for a home value estimate. Name is optional.
type ValuationRequest struct {
	Name    string `json:"name" form:"name" validate:"max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" form:"phone" validate:"max=50"`
	Address string `json:"address" form:"address" validate:"required,max=255"`
	Message string `json:"message" form:"message" validate:"max=1000"`
}

// LeadService validates and records inquiries and serves them to admins.
type LeadService struct {
	leads    LeadStore
	listings ListingLookup
	logger   *zap.Logger
}

func NewLeadService(leads LeadStore, listings ListingLookup, logger *zap.Logger) *LeadService {
	return &LeadService{leads: leads, listings: listings, logger: logger}
}

// SubmitContact records a general inquiry. The lead carries no listing.
func (s *LeadService) SubmitContact(ctx context.Context, form ContactForm) (*model.Lead, error) {
	trim(&form.Name, &form.Email, &form.Phone, &form.Message)
	if err := check(form).orNil(); err != nil {
		return nil, err
	}
	lead := &model.Lead{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   model.StringPtr(form.Phone),
		Message: model.StringPtr(form.Message),
	}
	return lead, s.insert(ctx, "SubmitContact", lead)
}

// RequestShowing records a showing request against listingID. The stored
// message names the listing, followed by the visitor's own message if any.
func (s *LeadService) RequestShowing(ctx context.Context, listingID string, req ShowingRequest) (*model.Lead, error) {
	trim(&req.Name, &req.Email, &req.Phone, &req.Message)
	if err := check(req).orNil(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(listingID); err != nil {
		return nil, fmt.Errorf("LeadService.RequestShowing %q: %w", listingID, repository.ErrNotFound)
	}
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("LeadService.RequestShowing: %w", err)
	}

	subject := listing.Title
	if subject == "" {
		subject = listing.Address
	}
	msg := "Requesting showing for: " + subject
	if req.Message != "" {
		msg += "\n\nAdditional message: " + req.Message
	}
	lead := &model.Lead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      model.StringPtr(req.Phone),
		Message:    &msg,
		PropertyID: &listing.ID,
	}
	return lead, s.insert(ctx, "RequestShowing", lead)
}

// RequestValuation records a valuation inquiry. Without a contact name the
// lead is stored under model.ValuationLeadName.
func (s *LeadService) RequestValuation(ctx context.Context, req ValuationRequest) (*model.Lead, error) {
	trim(&req.Name, &req.Email, &req.Phone, &req.Address, &req.Message)
	if err := check(req).orNil(); err != nil {
		return nil, err
	}
	name := req.Name
	if name == "" {
		name = model.ValuationLeadName
	}
	msg := "Home valuation request for: " + req.Address
	if req.Message != "" {
		msg += "\n\nAdditional message: " + req.Message
	}
	lead := &model.Lead{
		Name:    name,
		Email:   req.Email,
		Phone:   model.StringPtr(req.Phone),
		Message: &msg,
	}
	return lead, s.insert(ctx, "RequestValuation", lead)
}

func (s *LeadService) insert(ctx context.Context, op string, lead *model.Lead) error {
	lead.ID = uuid.NewString()
	if err := s.leads.Insert(ctx, lead); err != nil {
		return fmt.Errorf("LeadService.%s: %w", op, err)
	}
	s.logger.Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("kind", string(lead.Kind())),
	)
	return nil
}

// List returns every lead, or only the leads of one listing when propertyID
// is set, newest first.
func (s *LeadService) List(ctx context.Context, propertyID string) ([]model.LeadWithProperty, error) {
	var (
		leads []model.LeadWithProperty
		err   error
	)
	if propertyID == "" {
		leads, err = s.leads.List(ctx)
	} else {
		if _, perr := uuid.Parse(propertyID); perr != nil {
			return []model.LeadWithProperty{}, nil
		}
		leads, err = s.leads.ListByProperty(ctx, propertyID)
	}
	if err != nil {
		return nil, fmt.Errorf("LeadService.List: %w", err)
	}
	if leads == nil {
		leads = []model.LeadWithProperty{}
	}
	return leads, nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("LeadService.Delete %q: %w", id, repository.ErrNotFound)
	}
	if err := s.leads.Delete(ctx, id); err != nil {
		return fmt.Errorf("LeadService.Delete: %w", err)
	}
	return nil
}
