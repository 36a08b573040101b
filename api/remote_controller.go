package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"biteclub/api/resp"
	"biteclub/gateway"
	"biteclub/models"
)

type RemoteController struct {
	gw *gateway.Gateway
}

func NewRemoteController(gw *gateway.Gateway) *RemoteController {
	return &RemoteController{gw: gw}
}

// Get never returns the stored credential in clear.
func (ctl *RemoteController) Get(c *gin.Context) {
	cfg := ctl.gw.RemoteConfig()
	if cfg == nil {
		resp.OK(c, gin.H{"configured": false})
		return
	}
	resp.OK(c, gin.H{"configured": true, "config": cfg.Masked()})
}

func (ctl *RemoteController) Set(c *gin.Context) {
	var cfg models.RemoteConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		resp.BadRequest(c, "invalid remote config body: "+err.Error())
		return
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		resp.BadRequest(c, "endpoint is required")
		return
	}
	if err := ctl.gw.SetRemoteConfig(c.Request.Context(), &cfg); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"configured": true, "config": cfg.Masked()})
}

func (ctl *RemoteController) Clear(c *gin.Context) {
	if err := ctl.gw.SetRemoteConfig(c.Request.Context(), nil); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"configured": false})
}
