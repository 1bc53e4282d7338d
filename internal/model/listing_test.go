package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortImages(t *testing.T) {
	images := []Image{
		{ID: "a", DisplayOrder: 2},
		{ID: "b", DisplayOrder: 0},
		{ID: "c", DisplayOrder: 1},
	}
	SortImages(images)
	assert.Equal(t, []string{"b", "c", "a"}, []string{images[0].ID, images[1].ID, images[2].ID})
}

func TestImageURLsPlaceholder(t *testing.T) {
	l := Listing{}
	assert.Equal(t, []string{PlaceholderImageURL}, l.ImageURLs())

	l.Images = []Image{{URL: "x"}, {URL: "y"}}
	assert.Equal(t, []string{"x", "y"}, l.ImageURLs())
}

func TestNextDisplayOrder(t *testing.T) {
	assert.Equal(t, 0, NextDisplayOrder(nil))
	assert.Equal(t, 3, NextDisplayOrder([]Image{{DisplayOrder: 0}, {DisplayOrder: 1}, {DisplayOrder: 2}}))
	// a gap left by a removed image must not produce a duplicate order
	assert.Equal(t, 3, NextDisplayOrder([]Image{{DisplayOrder: 0}, {DisplayOrder: 2}}))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("")
	assert.True(t, ok)
	assert.Equal(t, StatusActive, st)

	st, ok = ParseStatus("Sold")
	assert.True(t, ok)
	assert.Equal(t, StatusSold, st)

	_, ok = ParseStatus("Under Contract")
	assert.False(t, ok)
}

func TestLeadKind(t *testing.T) {
	pid := "p1"
	assert.Equal(t, LeadKindProperty, (&Lead{Name: ValuationLeadName, PropertyID: &pid}).Kind())
	assert.Equal(t, LeadKindValuation, (&Lead{Name: ValuationLeadName}).Kind())
	assert.Equal(t, LeadKindGeneral, (&Lead{Name: "Jane"}).Kind())
}
