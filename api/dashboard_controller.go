package api

import (
	"github.com/gin-gonic/gin"

	"biteclub/api/resp"
	"biteclub/gateway"
	"biteclub/services"
)

type DashboardController struct {
	gw  *gateway.Gateway
	svc *services.DashboardService
}

func NewDashboardController(gw *gateway.Gateway, svc *services.DashboardService) *DashboardController {
	return &DashboardController{gw: gw, svc: svc}
}

func (ctl *DashboardController) Get(c *gin.Context) {
	rows, summary := ctl.svc.Load(c.Request.Context(), ctl.gw)
	resp.OK(c, gin.H{"restaurants": rows, "summary": summary})
}
