package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"biteclub/api/resp"
	"biteclub/gateway"
	"biteclub/models"
	"biteclub/services"
	"biteclub/utils"
)

type ReviewController struct {
	gw     *gateway.Gateway
	form   *services.ReviewForm
	logger *utils.Logger
}

func NewReviewController(gw *gateway.Gateway, form *services.ReviewForm, logger *utils.Logger) *ReviewController {
	return &ReviewController{gw: gw, form: form, logger: logger}
}

// formValue accepts a JSON string or number and keeps its text, so that
// "12.50" and 12.5 both reach the review form unchanged.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	*v = formValue(gjson.ParseBytes(b).String())
	return nil
}

type reviewRequest struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	UserName     string    `json:"userName"`
	Date         string    `json:"date"`
	Score        formValue `json:"score"`
	Spent        formValue `json:"spent"`
	Comments     string    `json:"comments"`
}

func (r reviewRequest) draft() models.ReviewDraft {
	return models.ReviewDraft{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		UserName:     r.UserName,
		Date:         r.Date,
		Score:        string(r.Score),
		Spent:        string(r.Spent),
		Comments:     r.Comments,
	}
}

func (ctl *ReviewController) List(c *gin.Context) {
	rows, src := ctl.gw.ListReviews(c.Request.Context())
	if restaurantID := c.Query("restaurantId"); restaurantID != "" {
		filtered := make([]models.Review, 0, len(rows))
		for _, r := range rows {
			if r.RestaurantID == restaurantID {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	resp.OK(c, gin.H{"reviews": rows, "source": src})
}

func (ctl *ReviewController) Create(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, "invalid review body: "+err.Error())
		return
	}
	ctl.save(c, req.draft(), true)
}

// Update replaces the review named in the path; the body id is ignored.
func (ctl *ReviewController) Update(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, "invalid review body: "+err.Error())
		return
	}
	d := req.draft()
	d.ID = strings.TrimSpace(c.Param("id"))
	ctl.save(c, d, false)
}

func (ctl *ReviewController) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	status, err := ctl.gw.DeleteReview(c.Request.Context(), id)
	if err != nil {
		ctl.logger.Error("[api] Delete review %s failed: %v", id, err)
		resp.ServerError(c, err)
		return
	}
	out := syncFields(status)
	out["id"] = id
	resp.OK(c, out)
}

func (ctl *ReviewController) save(c *gin.Context, d models.ReviewDraft, created bool) {
	review, err := ctl.form.Build(d)
	if err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	status, err := ctl.gw.SaveReview(c.Request.Context(), review)
	if errors.Is(err, gateway.ErrInvalidReview) {
		resp.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		ctl.logger.Error("[api] Save review %s failed: %v", review.ID, err)
		resp.ServerError(c, err)
		return
	}

	out := syncFields(status)
	out["review"] = review
	if created {
		resp.Created(c, out)
		return
	}
	resp.OK(c, out)
}
