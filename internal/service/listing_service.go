package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/filter"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
)

type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	Update(ctx context.Context, l *model.Listing) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	ListActive(ctx context.Context) ([]model.Listing, error)
	ListAll(ctx context.Context) ([]model.Listing, error)
}

type ImageStore interface {
	Add(ctx context.Context, img *model.Image) error
	Delete(ctx context.Context, propertyID, imageID string) error
}

// PhotoStorage stores uploaded files and returns their stored name and
// public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, originalName, contentType string, file io.Reader) (string, string, error)
}

// NoPhotoStorage rejects every upload. It stands in when object storage is
// not configured.
type NoPhotoStorage struct{}

func (NoPhotoStorage) Upload(context.Context, string, string, io.Reader) (string, string, error) {
	return "", "", fmt.Errorf("photo storage: %w", ErrUnavailable)
}

// ListingForm is the admin listing form. Numeric fields arrive as text;
// numbers that do not parse are stored as absent.
type ListingForm struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Address     string `json:"address" form:"address" validate:"required,max=255"`
	Price       string `json:"price" form:"price" validate:"required"`
	Description string `json:"description" form:"description"`
	Sqft        string `json:"sqft" form:"sqft"`
	Bedrooms    string `json:"bedrooms" form:"bedrooms"`
	Bathrooms   string `json:"bathrooms" form:"bathrooms"`
	Status      string `json:"status" form:"status"`
	IsPocket    bool   `json:"is_pocket_listing" form:"is_pocket_listing"`

	// RemoveImageIDs are images staged for removal; they are deleted when
	// the form is saved.
	RemoveImageIDs []string `json:"remove_image_ids" form:"remove_image_ids"`
}

// Upload is one file selected in the form.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// ImageResult is the outcome of one staged image change.
type ImageResult struct {
	Filename     string `json:"filename,omitempty"`
	ImageID      string `json:"image_id,omitempty"`
	URL          string `json:"url,omitempty"`
	DisplayOrder *int   `json:"display_order,omitempty"`
	Removed      bool   `json:"removed,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SaveResult is the re-fetched listing plus what happened to each image
// change.
type SaveResult struct {
	Listing *model.Listing `json:"listing"`
	Images  []ImageResult  `json:"images"`
}

// Failed reports whether any image change failed.
func (r *SaveResult) Failed() bool {
	for _, img := range r.Images {
		if img.Error != "" {
			return true
		}
	}
	return false
}

type ListingService struct {
	listings ListingStore
	images   ImageStore
	photos   PhotoStorage
	logger   *zap.Logger
	now      func() time.Time
}

func NewListingService(listings ListingStore, images ImageStore, photos PhotoStorage, logger *zap.Logger) *ListingService {
	if photos == nil {
		photos = NoPhotoStorage{}
	}
	return &ListingService{
		listings: listings,
		images:   images,
		photos:   photos,
		logger:   logger,
		now:      time.Now,
	}
}

// Public returns the Active listings matching c. Pocket listings are only
// shown to signed-in viewers.
func (s *ListingService) Public(ctx context.Context, c filter.Criteria, viewer *model.Session) ([]model.Listing, error) {
	if c.Pocket && viewer == nil {
		return nil, ErrSessionRequired
	}
	all, err := s.listings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListingService.Public: %w", err)
	}
	return filter.Apply(all, c), nil
}

// Get returns one listing. Pocket listings need a session.
func (s *ListingService) Get(ctx context.Context, id string, viewer *model.Session) (*model.Listing, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.IsPocket && viewer == nil {
		return nil, ErrSessionRequired
	}
	return l, nil
}

func (s *ListingService) get(ctx context.Context, id string) (*model.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("ListingService.get %q: %w", id, repository.ErrNotFound)
	}
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingService.get: %w", err)
	}
	return l, nil
}

// Admin returns every listing matching q, newest first.
func (s *ListingService) Admin(ctx context.Context, q filter.AdminQuery) ([]model.Listing, error) {
	all, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListingService.Admin: %w", err)
	}
	return filter.ApplyAdmin(all, q), nil
}

// Create stores a new listing and uploads its images.
func (s *ListingService) Create(ctx context.Context, form ListingForm, uploads []Upload) (*SaveResult, error) {
	l := &model.Listing{}
	if err := applyForm(l, &form); err != nil {
		return nil, err
	}
	l.ID = uuid.NewString()
	l.CreatedAt = s.now()
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("ListingService.Create: %w", err)
	}
	s.logger.Info("listing created", zap.String("listing_id", l.ID))
	return s.saveImages(ctx, l.ID, nil, nil, uploads)
}

// Update overwrites the listing's fields, removes the staged images and
// appends the uploads after the remaining ones.
func (s *ListingService) Update(ctx context.Context, id string, form ListingForm, uploads []Upload) (*SaveResult, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *current
	if err := applyForm(&updated, &form); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("ListingService.Update: %w", err)
	}
	return s.saveImages(ctx, id, current.Images, form.RemoveImageIDs, uploads)
}

// saveImages applies removals first, then uploads files one at a time. A
// failed file is reported and the rest continue.
func (s *ListingService) saveImages(ctx context.Context, listingID string, existing []model.Image, remove []string, uploads []Upload) (*SaveResult, error) {
	res := &SaveResult{Images: []ImageResult{}}

	removed := map[string]bool{}
	for _, imageID := range remove {
		if imageID == "" || removed[imageID] {
			continue
		}
		r := ImageResult{ImageID: imageID}
		if err := s.images.Delete(ctx, listingID, imageID); err != nil {
			s.logger.Warn("image removal failed", zap.String("image_id", imageID), zap.Error(err))
			r.Error = "Failed to remove image"
		} else {
			r.Removed = true
			removed[imageID] = true
		}
		res.Images = append(res.Images, r)
	}

	kept := make([]model.Image, 0, len(existing))
	for _, img := range existing {
		if !removed[img.ID] {
			kept = append(kept, img)
		}
	}

	next := model.NextDisplayOrder(kept)
	for _, up := range uploads {
		r := s.upload(ctx, listingID, up, next)
		if r.Error == "" {
			next++
		}
		res.Images = append(res.Images, r)
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("ListingService.saveImages refetch: %w", err)
	}
	res.Listing = l
	return res, nil
}

func (s *ListingService) upload(ctx context.Context, listingID string, up Upload, order int) ImageResult {
	r := ImageResult{Filename: up.Filename}
	if !strings.HasPrefix(up.ContentType, "image/") {
		r.Error = "Only image files can be uploaded"
		return r
	}
	f, err := up.Open()
	if err != nil {
		r.Error = "Failed to read file"
		return r
	}
	defer f.Close()

	_, url, err := s.photos.Upload(ctx, up.Filename, up.ContentType, f)
	if err != nil {
		s.logger.Warn("image upload failed", zap.String("filename", up.Filename), zap.Error(err))
		r.Error = "Failed to upload image"
		return r
	}
	img := &model.Image{
		ID:           uuid.NewString(),
		PropertyID:   listingID,
		URL:          url,
		DisplayOrder: order,
		CreatedAt:    s.now(),
	}
	if err := s.images.Add(ctx, img); err != nil {
		s.logger.Warn("image record failed", zap.String("filename", up.Filename), zap.Error(err))
		r.Error = "Failed to save image"
		return r
	}
	r.ImageID = img.ID
	r.URL = url
	r.DisplayOrder = &img.DisplayOrder
	return r
}

// Delete removes a listing together with its images and leads.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("ListingService.Delete %q: %w", id, repository.ErrNotFound)
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("ListingService.Delete: %w", err)
	}
	s.logger.Info("listing deleted", zap.String("listing_id", id))
	return nil
}

func applyForm(l *model.Listing, form *ListingForm) error {
	trim(&form.Title, &form.Address, &form.Price, &form.Description, &form.Status)
	verr := check(form)

	raw, err := strconv.ParseFloat(strings.ReplaceAll(form.Price, ",", ""), 64)
	price := math.Round(raw*100) / 100
	switch {
	case form.Price == "":
	case err != nil || math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0:
		verr.add("price", "Price must be a non-negative number")
	case price > model.MaxPrice:
		verr.add("price", "Price must be at most 9,999,999,999.99")
	}
	status, ok := model.ParseStatus(form.Status)
	if !ok {
		verr.add("status", "Status must be Active, Pending or Sold")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	l.Title = form.Title
	l.Address = form.Address
	l.Price = price
	l.Description = model.StringPtr(form.Description)
	l.Sqft = model.ParseOptionalInt(form.Sqft)
	l.Bedrooms = model.ParseOptionalInt(form.Bedrooms)
	l.Bathrooms = model.ParseOptionalInt(form.Bathrooms)
	l.Status = status
	l.IsPocket = form.IsPocket
	return nil
}
