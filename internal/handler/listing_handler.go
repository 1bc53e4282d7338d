package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/config"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/filter"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/middleware"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

// CatalogSource returns the filter catalog in effect.
type CatalogSource interface {
	Current() *config.Catalog
}

// ListingHandler serves the public catalog and the admin listing table.
type ListingHandler struct {
	Listings *service.ListingService
	Catalog  CatalogSource
}

func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/filters", h.GetFilters)
	rg.GET("/listings", h.GetListings)
	rg.GET("/listings/:id", h.GetListingByID)
}

// RegisterAdminRoutes expects rg to require an admin session.
func (h *ListingHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/listings", h.AdminListings)
	rg.POST("/listings", h.CreateListing)
	rg.PUT("/listings/:id", h.UpdateListing)
	rg.DELETE("/listings/:id", h.DeleteListing)
}

// ListingResponse adds the display helpers the catalog cards use.
type ListingResponse struct {
	model.Listing
	ImageURLs    []string `json:"image_urls"`
	Neighborhood string   `json:"neighborhood"`
}

func toResponse(l *model.Listing) ListingResponse {
	resp := ListingResponse{
		Listing:      *l,
		ImageURLs:    l.ImageURLs(),
		Neighborhood: filter.Neighborhood(l.Address),
	}
	if resp.Images == nil {
		resp.Images = []model.Image{}
	}
	return resp
}

func toResponses(list []model.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i]))
	}
	return out
}

// GET /api/filters
func (h *ListingHandler) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog.Current())
}

// GET /api/listings?price=0-2000000&neighborhood=westlake&beds=3&pocket=true
func (h *ListingHandler) GetListings(c *gin.Context) {
	criteria := filter.Criteria{
		Price:        filter.ParsePriceRange(c.Query("price")),
		Neighborhood: c.Query("neighborhood"),
		MinBeds:      filter.ParseMinBeds(c.Query("beds")),
		Pocket:       c.Query("pocket") == "true",
	}
	list, err := h.Listings.Public(c.Request.Context(), criteria, middleware.Session(c))
	if err != nil {
		respondError(c, err, "Failed to load listings")
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	l, err := h.Listings.Get(c.Request.Context(), c.Param("id"), middleware.Session(c))
	if err != nil {
		respondError(c, err, "Failed to load listing")
		return
	}
	c.JSON(http.StatusOK, toResponse(l))
}

// GET /api/admin/listings?search=...&status=Sold&visibility=pocket
func (h *ListingHandler) AdminListings(c *gin.Context) {
	q := filter.AdminQuery{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		Visibility: filter.ParseVisibility(c.Query("visibility")),
	}
	list, err := h.Listings.Admin(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to load listings")
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// SaveResponse is returned by create and update.
type SaveResponse struct {
	Listing ListingResponse       `json:"listing"`
	Images  []service.ImageResult `json:"images"`
}

// POST /api/admin/listings (multipart: listing fields plus "images" files)
func (h *ListingHandler) CreateListing(c *gin.Context) {
	form, uploads, ok := bindListingForm(c)
	if !ok {
		return
	}
	res, err := h.Listings.Create(c.Request.Context(), form, uploads)
	if err != nil {
		respondError(c, err, "Failed to create listing")
		return
	}
	c.JSON(http.StatusCreated, SaveResponse{Listing: toResponse(res.Listing), Images: res.Images})
}

// PUT /api/admin/listings/:id (multipart; remove_image_ids may repeat)
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	form, uploads, ok := bindListingForm(c)
	if !ok {
		return
	}
	res, err := h.Listings.Update(c.Request.Context(), c.Param("id"), form, uploads)
	if err != nil {
		respondError(c, err, "Failed to update listing")
		return
	}
	c.JSON(http.StatusOK, SaveResponse{Listing: toResponse(res.Listing), Images: res.Images})
}

// DELETE /api/admin/listings/:id?confirm=true
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Listings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete listing")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindListingForm(c *gin.Context) (service.ListingForm, []service.Upload, bool) {
	var form service.ListingForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return form, nil, false
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return form, nil, true
	}
	mf, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return form, nil, false
	}
	files := mf.File["images"]
	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, toUpload(fh))
	}
	return form, uploads, true
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
