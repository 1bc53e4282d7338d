package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

type AnalyticsHandler struct {
	Analytics *service.AnalyticsService
}

func (h *AnalyticsHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics", h.GetReport)
}

// GET /api/admin/analytics?days=7|30|90
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		respondError(c, service.ErrInvalidWindow, "")
		return
	}
	rep, err := h.Analytics.Report(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "Failed to load analytics")
		return
	}
	c.JSON(http.StatusOK, rep)
}
