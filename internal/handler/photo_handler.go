package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PhotoSource reads stored image files.
type PhotoSource interface {
	Download(ctx context.Context, filename string) ([]byte, string, error)
}

// PhotoHandler serves the public image URLs handed out at upload time.
type PhotoHandler struct {
	Photos PhotoSource
}

func (h *PhotoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/images/:name", h.DownloadPhoto)
}

// GET /images/:name
func (h *PhotoHandler) DownloadPhoto(c *gin.Context) {
	if h.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}
	name := c.Param("name")
	data, contentType, err := h.Photos.Download(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, "download failed")
		return
	}

	c.Header("Content-Disposition", "inline; filename="+name)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
