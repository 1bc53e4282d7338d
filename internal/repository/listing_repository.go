package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

const listingColumns = `id, title, address, price, description, sqft, bedrooms, bathrooms, status, is_pocket_listing, created_at`

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

// Create inserts a listing. ID and CreatedAt must already be set.
func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO properties
            (id, title, address, price, description, sqft, bedrooms, bathrooms, status, is_pocket_listing, created_at)
        VALUES
            (:id, :title, :address, :price, :description, :sqft, :bedrooms, :bathrooms, :status, :is_pocket_listing, :created_at)
    `, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

// Update overwrites every editable field. Images are managed separately.
func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) error {
	res, err := r.DB.NamedExecContext(ctx, `
        UPDATE properties SET
            title             = :title,
            address           = :address,
            price             = :price,
            description       = :description,
            sqft              = :sqft,
            bedrooms          = :bedrooms,
            bathrooms         = :bathrooms,
            status            = :status,
            is_pocket_listing = :is_pocket_listing
        WHERE id = :id
    `, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	return expectRow(res, "ListingRepository.Update")
}

// Delete removes a listing. Images and leads go with it through the
// foreign-key cascades.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	return expectRow(res, "ListingRepository.Delete")
}

// GetByID returns one listing with its images in display order.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := r.DB.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM properties WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ListingRepository.GetByID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	list := []model.Listing{l}
	if err := r.attachImages(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListActive returns listings with status Active, newest first. Pocket
// listings are included; callers decide who may see them.
func (r *ListingRepository) ListActive(ctx context.Context) ([]model.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM properties WHERE status = $1 ORDER BY created_at DESC`, model.StatusActive)
}

// ListAll returns every listing regardless of status, newest first.
func (r *ListingRepository) ListAll(ctx context.Context) ([]model.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM properties ORDER BY created_at DESC`)
}

func (r *ListingRepository) list(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	var list []model.Listing
	if err := r.DB.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("ListingRepository.list: %w", err)
	}
	if err := r.attachImages(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachImages loads the images of all listings in one query and sorts each
// gallery by display order. Storage order is not relied on.
func (r *ListingRepository) attachImages(ctx context.Context, list []model.Listing) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		index[list[i].ID] = i
	}

	var images []model.Image
	err := r.DB.SelectContext(ctx, &images, `
		SELECT id, property_id, image_url, display_order, created_at
		FROM property_images
		WHERE property_id = ANY($1::uuid[])
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("ListingRepository.attachImages: %w", err)
	}
	for _, img := range images {
		if i, ok := index[img.PropertyID]; ok {
			list[i].Images = append(list[i].Images, img)
		}
	}
	for i := range list {
		model.SortImages(list[i].Images)
	}
	return nil
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, `SELECT COUNT(1) FROM properties`); err != nil {
		return 0, fmt.Errorf("ListingRepository.Count: %w", err)
	}
	return n, nil
}

func (r *ListingRepository) CountByStatus(ctx context.Context, status model.Status) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, `SELECT COUNT(1) FROM properties WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("ListingRepository.CountByStatus: %w", err)
	}
	return n, nil
}

func (r *ListingRepository) CountPocket(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, `SELECT COUNT(1) FROM properties WHERE is_pocket_listing`); err != nil {
		return 0, fmt.Errorf("ListingRepository.CountPocket: %w", err)
	}
	return n, nil
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
