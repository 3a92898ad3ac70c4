package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/storage"
)

type ApprovalInput struct {
	FileID  string `json:"fileId"`
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// ReviewController: các route /api/admin dành cho giảng viên.
type ReviewController struct {
	gateway     *storage.Gateway
	submissions *services.SubmissionService
}

func NewReviewController(gateway *storage.Gateway, submissions *services.SubmissionService) *ReviewController {
	return &ReviewController{gateway: gateway, submissions: submissions}
}

// GET /api/admin/submissions?page=&limit=&status=&search=
func (rc *ReviewController) ListSubmissions(c *gin.Context) {
	// phân trang, giá trị sai về mặc định
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := rc.submissions.ListSubmissions(c.Request.Context(), services.ListQuery{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (rc *ReviewController) GetStudentSubmission(c *gin.Context) {
	userID, ok := parseUUID(c, c.Param("id"), "id")
	if !ok {
		return
	}
	sub, err := rc.submissions.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (rc *ReviewController) Download(c *gin.Context) {
	fileID, ok := parseUUID(c, c.Param("fileId"), "fileId")
	if !ok {
		return
	}
	sub, err := rc.submissions.GetByID(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	grant, err := rc.gateway.GenerateDownloadGrant(c.Request.Context(), sub.FileKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, downloadResponse(grant, sub.FileName, sub.MimeType))
}

// PUT /api/admin/approval
func (rc *ReviewController) SetApproval(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input ApprovalInput
	if !bindJSON(c, &input) {
		return
	}
	fileID, ok := parseUUID(c, input.FileID, "fileId")
	if !ok {
		return
	}

	status := models.SubmissionStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	sub, err := rc.submissions.SetStatus(c.Request.Context(), fileID, status, actorID, input.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Cập nhật trạng thái thành công",
		"submission": sub,
	})
}
