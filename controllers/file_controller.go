package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/storage"
)

// FileController phục vụ sinh viên xem hồ sơ của chính mình.
type FileController struct {
	gateway     *storage.Gateway
	submissions *services.SubmissionService
}

func NewFileController(gateway *storage.Gateway, submissions *services.SubmissionService) *FileController {
	return &FileController{gateway: gateway, submissions: submissions}
}

// ListByUser: GET /api/files/user/:userId, userId phải trùng người đăng nhập.
func (fc *FileController) ListByUser(c *gin.Context) {
	userID, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	subs, err := fc.submissions.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subs, "total": len(subs)})
}

func (fc *FileController) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := parseUUID(c, c.Param("fileId"), "fileId")
	if !ok {
		return
	}

	sub, err := fc.submissions.GetOwned(c.Request.Context(), fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	grant, err := fc.gateway.GenerateDownloadGrant(c.Request.Context(), sub.FileKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, downloadResponse(grant, sub.FileName, sub.MimeType))
}

func downloadResponse(grant *storage.DownloadGrant, fileName, mimeType string) gin.H {
	return gin.H{
		"downloadUrl": grant.DownloadURL,
		"fileName":    fileName,
		"mimeType":    mimeType,
		"expiresIn":   grant.ExpiresIn,
	}
}
