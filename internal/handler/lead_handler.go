package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

// LeadHandler takes the public forms and serves the admin leads table.
type LeadHandler struct {
	Leads *service.LeadService
}

func (h *LeadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/contact", h.SubmitContact)
	rg.POST("/leads/valuation", h.RequestValuation)
	rg.POST("/listings/:id/showings", h.RequestShowing)
}

func (h *LeadHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.ListLeads)
	rg.DELETE("/leads/:id", h.DeleteLead)
}

// LeadResponse labels a lead for the admin table.
type LeadResponse struct {
	model.LeadWithProperty
	Kind model.LeadKind `json:"kind"`
}

// POST /api/leads/contact
func (h *LeadHandler) SubmitContact(c *gin.Context) {
	var form service.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	lead, err := h.Leads.SubmitContact(c.Request.Context(), form)
	if err != nil {
		respondError(c, err, "Failed to send message. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// POST /api/leads/valuation
func (h *LeadHandler) RequestValuation(c *gin.Context) {
	var req service.ValuationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	lead, err := h.Leads.RequestValuation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to submit valuation request. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// POST /api/listings/:id/showings
func (h *LeadHandler) RequestShowing(c *gin.Context) {
	var req service.ShowingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	lead, err := h.Leads.RequestShowing(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to request showing. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// GET /api/admin/leads?property_id=...
func (h *LeadHandler) ListLeads(c *gin.Context) {
	leads, err := h.Leads.List(c.Request.Context(), c.Query("property_id"))
	if err != nil {
		respondError(c, err, "Failed to load leads")
		return
	}
	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, LeadResponse{LeadWithProperty: l, Kind: l.Kind()})
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /api/admin/leads/:id?confirm=true
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.Leads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete lead")
		return
	}
	c.Status(http.StatusNoContent)
}
