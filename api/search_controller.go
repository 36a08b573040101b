package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"biteclub/api/resp"
	"biteclub/models"
	"biteclub/search"
)

type SearchController struct {
	provider search.Provider
	fallback *models.Coordinates
	timeout  time.Duration
}

func NewSearchController(p search.Provider, loc *models.Coordinates, timeout time.Duration) *SearchController {
	return &SearchController{provider: p, fallback: loc, timeout: timeout}
}

func (ctl *SearchController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		resp.BadRequest(c, "q is required")
		return
	}

	ctx := c.Request.Context()
	if ctl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ctl.timeout)
		defer cancel()
	}

	results := ctl.provider.Search(ctx, query, ctl.location(c))
	resp.OK(c, gin.H{"results": results})
}

// location prefers request coordinates and falls back to the configured ones.
// Malformed parameters are ignored.
func (ctl *SearchController) location(c *gin.Context) *models.Coordinates {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat == nil && errLng == nil && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 {
		return &models.Coordinates{Latitude: lat, Longitude: lng}
	}
	return ctl.fallback
}
