package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/cccd-review-backend/middleware"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

const internalErrorMessage = "Lỗi máy chủ nội bộ"

// respondError ánh xạ lỗi sang HTTP status; lỗi nội bộ chỉ trả thông báo chung.
func respondError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		utils.ReportError(c.Request.Method+" "+c.FullPath(), err, map[string]interface{}{
			"user_id": c.GetString(middleware.ContextUserID),
		})
		c.JSON(status, gin.H{"error": internalErrorMessage})
		return
	}

	body := gin.H{"error": err.Error()}
	var appErr *utils.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.JSON(status, body)
}

// bindJSON trả ValidationError khi body không phải JSON hợp lệ.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, utils.NewValidationError("Dữ liệu JSON không hợp lệ", nil))
		return false
	}
	return true
}

func parseUUID(c *gin.Context, raw, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, utils.NewValidationError(field+" không hợp lệ", map[string]string{field: "Phải là UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, utils.NewAuthenticationError("Chưa đăng nhập"))
	}
	return id, ok
}

// requireSelf chặn thao tác trên dữ liệu của người khác.
func requireSelf(c *gin.Context, raw string) (uuid.UUID, bool) {
	sessionID, ok := currentUserID(c)
	if !ok {
		return uuid.Nil, false
	}
	if raw == "" {
		return sessionID, true
	}
	target, ok := parseUUID(c, raw, "userId")
	if !ok {
		return uuid.Nil, false
	}
	if target != sessionID {
		respondError(c, utils.NewAuthorizationError("Không được thao tác trên hồ sơ của người khác"))
		return uuid.Nil, false
	}
	return sessionID, true
}
