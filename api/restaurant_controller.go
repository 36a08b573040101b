package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"biteclub/api/resp"
	"biteclub/gateway"
	"biteclub/models"
	"biteclub/utils"
)

type RestaurantController struct {
	gw     *gateway.Gateway
	logger *utils.Logger
}

func NewRestaurantController(gw *gateway.Gateway, logger *utils.Logger) *RestaurantController {
	return &RestaurantController{gw: gw, logger: logger}
}

func (ctl *RestaurantController) List(c *gin.Context) {
	rows, src := ctl.gw.ListRestaurants(c.Request.Context())
	resp.OK(c, gin.H{"restaurants": rows, "source": src})
}

func (ctl *RestaurantController) Create(c *gin.Context) {
	var r models.Restaurant
	if err := c.ShouldBindJSON(&r); err != nil {
		resp.BadRequest(c, "invalid restaurant body: "+err.Error())
		return
	}

	status, err := ctl.gw.SaveRestaurant(c.Request.Context(), r)
	if errors.Is(err, gateway.ErrInvalidRestaurant) {
		resp.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		ctl.logger.Error("[api] Save restaurant failed: %v", err)
		resp.ServerError(c, err)
		return
	}

	out := syncFields(status)
	out["restaurant"] = r
	resp.Created(c, out)
}
