package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

// ImageRepository stores the property_images rows. The image files
// themselves live in PhotoRepository.
type ImageRepository struct {
	DB *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

func (r *ImageRepository) Add(ctx context.Context, img *model.Image) error {
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO property_images (id, property_id, image_url, display_order, created_at)
		VALUES (:id, :property_id, :image_url, :display_order, :created_at)
	`, img)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("ImageRepository.Add order %d: %w", img.DisplayOrder, ErrDuplicate)
		case "23503":
			return fmt.Errorf("ImageRepository.Add %s: %w", img.PropertyID, ErrNotFound)
		}
	}
	if err != nil {
		return fmt.Errorf("ImageRepository.Add: %w", err)
	}
	return nil
}

// Delete removes one image row belonging to propertyID.
func (r *ImageRepository) Delete(ctx context.Context, propertyID, imageID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM property_images WHERE id = $1 AND property_id = $2`, imageID, propertyID)
	if err != nil {
		return fmt.Errorf("ImageRepository.Delete: %w", err)
	}
	return expectRow(res, "ImageRepository.Delete")
}
