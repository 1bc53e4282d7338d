package model

import (
	"sort"
	"time"
)

// Status is the sale state of a listing.
type Status string

const (
	StatusActive  Status = "Active"
	StatusPending Status = "Pending"
	StatusSold    Status = "Sold"
)

// MaxPrice is the largest price the properties.price NUMERIC(12,2) column
// holds.
const MaxPrice = 9_999_999_999.99

// PlaceholderImageURL is shown for listings that have no images yet.
const PlaceholderImageURL = "https://via.placeholder.com/800x500?text=No+Image"

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

// ParseStatus maps form text onto a Status. Empty text means Active.
func ParseStatus(s string) (Status, bool) {
	if s == "" {
		return StatusActive, true
	}
	st := Status(s)
	return st, st.Valid()
}

// Listing is a property record as stored in the properties table.
type Listing struct {
	ID          string      `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Address     string      `db:"address" json:"address"`
	Price       float64     `db:"price" json:"price"`
	Description *string     `db:"description" json:"description"`
	Sqft        OptionalInt `db:"sqft" json:"sqft"`
	Bedrooms    OptionalInt `db:"bedrooms" json:"bedrooms"`
	Bathrooms   OptionalInt `db:"bathrooms" json:"bathrooms"`
	Status      Status      `db:"status" json:"status"`
	IsPocket    bool        `db:"is_pocket_listing" json:"is_pocket_listing"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	Images      []Image     `db:"-" json:"images"`
}

// Image is one entry of a listing's gallery.
type Image struct {
	ID           string    `db:"id" json:"id"`
	PropertyID   string    `db:"property_id" json:"property_id"`
	URL          string    `db:"image_url" json:"image_url"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// SortImages orders images by display order, ascending. Ties keep their
// fetch order.
func SortImages(images []Image) {
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].DisplayOrder < images[j].DisplayOrder
	})
}

// ImageURLs returns the gallery URLs in display order, substituting the
// placeholder when the listing has no images.
func (l *Listing) ImageURLs() []string {
	if len(l.Images) == 0 {
		return []string{PlaceholderImageURL}
	}
	urls := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// NextDisplayOrder is the display order for the first image of a new upload
// batch. It is the current image count, moved past the highest existing
// order when earlier removals left gaps, so orders stay unique per listing.
func NextDisplayOrder(existing []Image) int {
	next := len(existing)
	for _, img := range existing {
		if img.DisplayOrder >= next {
			next = img.DisplayOrder + 1
		}
	}
	return next
}
