// Package storage cấp URL ký sẵn (presigned) để client upload/download trực tiếp
// với object storage, server không trung chuyển bytes.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"

	"github.com/vnkhanh/cccd-review-backend/utils"
)

const (
	MaxFileSize    int64 = 15 * 1024 * 1024
	UploadURLTTL         = 5 * time.Minute
	DownloadURLTTL       = time.Hour
)

// MIME được phép cho hồ sơ
var allowedMimeTypes = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/png":  "png",
}

// Presigner là phần phụ thuộc nhà cung cấp (S3, Supabase, OSS).
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
	ExpiresIn int    `json:"expiresIn"` // giây
}

type DownloadGrant struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"`
}

type Gateway struct {
	presigner Presigner
	newID     func() string
}

func NewGateway(p Presigner) *Gateway {
	return &Gateway{presigner: p, newID: uuid.NewString}
}

// IsAllowedMimeType báo mimeType có nằm trong danh sách cho phép.
func IsAllowedMimeType(mimeType string) bool {
	_, ok := allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// ValidateUpload kiểm tra tên file, loại file và kích thước (0, 15MB].
func ValidateUpload(fileName, mimeType string, size int64) error {
	fields := map[string]string{}
	if strings.TrimSpace(fileName) == "" {
		fields["fileName"] = "Thiếu tên file"
	}
	if !IsAllowedMimeType(mimeType) {
		fields["fileType"] = "Định dạng file không hỗ trợ (chỉ nhận pdf, doc, docx, jpg, jpeg, png)"
	}
	switch {
	case size <= 0:
		fields["fileSize"] = "Kích thước file không hợp lệ"
	case size > MaxFileSize:
		fields["fileSize"] = "File vượt quá 15MB"
	}
	if len(fields) > 0 {
		return utils.NewValidationError("File không hợp lệ", fields)
	}
	return nil
}

// ObjectKey dựng key dạng uploads/{userID}/{randomID}-{tên-file}.
func ObjectKey(userID uuid.UUID, randomID, fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := filepath.Ext(base)
	name := slug.Make(strings.TrimSuffix(base, ext))
	if name == "" {
		name = "file"
	}
	if ext != "" {
		ext = "." + slug.Make(strings.TrimPrefix(ext, "."))
		if ext == "." {
			ext = ""
		}
	}
	return fmt.Sprintf("uploads/%s/%s-%s%s", userID, randomID, name, ext)
}

// UserPrefix là tiền tố key của mọi file thuộc userID.
func UserPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("uploads/%s/", userID)
}

func (g *Gateway) GenerateUploadGrant(ctx context.Context, userID uuid.UUID, fileName, mimeType string, size int64) (*UploadGrant, error) {
	if err := ValidateUpload(fileName, mimeType, size); err != nil {
		return nil, err
	}
	key := ObjectKey(userID, g.newID(), fileName)
	url, err := g.presigner.PresignPut(ctx, key, strings.ToLower(strings.TrimSpace(mimeType)), size, UploadURLTTL)
	if err != nil {
		return nil, errors.Wrap(err, "presign upload")
	}
	return &UploadGrant{
		UploadURL: url,
		FileKey:   key,
		ExpiresIn: int(UploadURLTTL / time.Second),
	}, nil
}

func (g *Gateway) GenerateDownloadGrant(ctx context.Context, key string) (*DownloadGrant, error) {
	if strings.TrimSpace(key) == "" {
		return nil, utils.NewValidationError("Thiếu fileKey", map[string]string{"fileKey": "Thiếu fileKey"})
	}
	url, err := g.presigner.PresignGet(ctx, key, DownloadURLTTL)
	if err != nil {
		return nil, errors.Wrap(err, "presign download")
	}
	return &DownloadGrant{
		DownloadURL: url,
		ExpiresIn:   int(DownloadURLTTL / time.Second),
	}, nil
}
