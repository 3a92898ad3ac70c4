package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/storage"
)

type PresignedURLInput struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
	UserID   string `json:"userId"`
}

type CompleteUploadInput struct {
	FileKey  string `json:"fileKey"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
	UserID   string `json:"userId"`
}

// UploadController: sinh viên xin URL upload rồi báo hoàn tất.
type UploadController struct {
	gateway     *storage.Gateway
	submissions *services.SubmissionService
}

func NewUploadController(gateway *storage.Gateway, submissions *services.SubmissionService) *UploadController {
	return &UploadController{gateway: gateway, submissions: submissions}
}

func (uc *UploadController) PresignedURL(c *gin.Context) {
	var input PresignedURLInput
	if !bindJSON(c, &input) {
		return
	}
	userID, ok := requireSelf(c, input.UserID)
	if !ok {
		return
	}

	grant, err := uc.gateway.GenerateUploadGrant(c.Request.Context(), userID, input.FileName, input.FileType, input.FileSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

// Complete ghi nhận file đã PUT lên storage thành hồ sơ PENDING.
func (uc *UploadController) Complete(c *gin.Context) {
	var input CompleteUploadInput
	if !bindJSON(c, &input) {
		return
	}
	userID, ok := requireSelf(c, input.UserID)
	if !ok {
		return
	}

	sub, err := uc.submissions.RecordUpload(c.Request.Context(), services.RecordUploadInput{
		UserID:   userID,
		FileKey:  input.FileKey,
		FileName: input.FileName,
		FileSize: input.FileSize,
		MimeType: input.MimeType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Nộp hồ sơ thành công",
		"submission": sub,
	})
}
