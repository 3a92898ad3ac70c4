package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

type StatsController struct {
	submissions *services.SubmissionService
}

func NewStatsController(submissions *services.SubmissionService) *StatsController {
	return &StatsController{submissions: submissions}
}

// GET /api/admin/stats?from=YYYY-MM-DD&to=YYYY-MM-DD, mặc định 7 ngày gần nhất
func (sc *StatsController) GetReviewStats(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(c, utils.NewValidationError("Ngày bắt đầu không hợp lệ", map[string]string{"from": "Định dạng YYYY-MM-DD"}))
			return
		}
		from = t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(c, utils.NewValidationError("Ngày kết thúc không hợp lệ", map[string]string{"to": "Định dạng YYYY-MM-DD"}))
			return
		}
		// lấy hết ngày kết thúc
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	if from.After(to) {
		respondError(c, utils.NewValidationError("Khoảng ngày không hợp lệ", map[string]string{"from": "Phải trước ngày kết thúc"}))
		return
	}

	stats, err := sc.submissions.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
