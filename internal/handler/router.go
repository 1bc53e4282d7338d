package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/logging"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/middleware"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

// Deps is everything the router needs. Photos may be nil when object
// storage is not configured.
type Deps struct {
	Listings  *service.ListingService
	Leads     *service.LeadService
	Analytics *service.AnalyticsService
	Auth      *service.AuthService
	Photos    PhotoSource
	Catalog   CatalogSource
	Logger    *zap.Logger
}

// NewRouter mounts the public API under /api, the admin console under
// /api/admin and stored images under /images.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	photos := &PhotoHandler{Photos: d.Photos}
	photos.RegisterRoutes(&r.RouterGroup)

	listings := &ListingHandler{Listings: d.Listings, Catalog: d.Catalog}
	leads := &LeadHandler{Leads: d.Leads}
	analytics := &AnalyticsHandler{Analytics: d.Analytics}
	auth := &AuthHandler{Auth: d.Auth}

	api := r.Group("/api")
	api.Use(middleware.Authenticate(d.Auth))
	listings.RegisterRoutes(api)
	leads.RegisterRoutes(api)
	auth.RegisterRoutes(api)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		listings.RegisterAdminRoutes(admin)
		leads.RegisterAdminRoutes(admin)
		analytics.RegisterAdminRoutes(admin)
	}
	return r
}
