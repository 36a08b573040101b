// Package api exposes the gateway, dashboard and search over HTTP.
package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"biteclub/api/middlewares"
	"biteclub/gateway"
	"biteclub/models"
	"biteclub/search"
	"biteclub/services"
	"biteclub/utils"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Gateway       *gateway.Gateway
	Dashboard     *services.DashboardService
	Form          *services.ReviewForm
	Search        search.Provider
	Location      *models.Coordinates
	SearchTimeout time.Duration
	CORSOrigins   []string
	Logger        *utils.Logger
}

// NewRouter builds a gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = utils.NewLoggerTo(io.Discard)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Logger))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	restCtrl := NewRestaurantController(d.Gateway, d.Logger)
	reviewCtrl := NewReviewController(d.Gateway, d.Form, d.Logger)
	dashCtrl := NewDashboardController(d.Gateway, d.Dashboard)
	searchCtrl := NewSearchController(d.Search, d.Location, d.SearchTimeout)
	remoteCtrl := NewRemoteController(d.Gateway)

	a := r.Group("/api")
	{
		a.GET("/restaurants", restCtrl.List)
		a.POST("/restaurants", restCtrl.Create)

		a.GET("/reviews", reviewCtrl.List)
		a.POST("/reviews", reviewCtrl.Create)
		a.PUT("/reviews/:id", reviewCtrl.Update)
		a.DELETE("/reviews/:id", reviewCtrl.Delete)

		a.GET("/dashboard", dashCtrl.Get)
		a.GET("/search", searchCtrl.Search)

		a.GET("/remote-config", remoteCtrl.Get)
		a.PUT("/remote-config", remoteCtrl.Set)
		a.DELETE("/remote-config", remoteCtrl.Clear)
	}
}

// syncFields describes the remote half of a write for the response body.
func syncFields(s gateway.SyncStatus) gin.H {
	h := gin.H{"sync": s.State.String()}
	if s.Err != nil {
		h["syncError"] = s.Err.Error()
	}
	return h
}
