package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusApproved SubmissionStatus = "APPROVED"
	StatusRejected SubmissionStatus = "REJECTED"
)

// StatusAll là giá trị lọc "tất cả" trên trang duyệt, không phải trạng thái thật.
const StatusAll = "ALL"

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Reviewed cho biết trạng thái có mang thông tin người duyệt hay không.
func (s SubmissionStatus) Reviewed() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Submission là một file hồ sơ sinh viên đã tải lên; bytes nằm ở object storage,
// DB chỉ giữ key và metadata.
type Submission struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	FileKey    string           `gorm:"type:text;not null" json:"file_key"`
	FileName   string           `gorm:"size:255;not null" json:"file_name"`
	FileSize   int64            `gorm:"not null" json:"file_size"` // bytes
	MimeType   string           `gorm:"size:150;not null" json:"mime_type"`
	Status     SubmissionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	UploadedAt time.Time        `gorm:"not null;index" json:"uploaded_at"`
	ApprovedAt *time.Time       `json:"approved_at"`
	ApprovedBy *uuid.UUID       `gorm:"type:uuid" json:"approved_by"`
	Approver   *User            `gorm:"foreignKey:ApprovedBy;constraint:OnDelete:SET NULL;" json:"approver,omitempty"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
