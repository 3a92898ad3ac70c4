package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT" // Sinh viên nộp hồ sơ
	RoleTeacher UserRole = "TEACHER" // Giảng viên duyệt hồ sơ
	RoleAdmin   UserRole = "ADMIN"   // Quản trị hệ thống
)

// Valid báo role có thuộc tập role cố định hay không.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:150;not null" json:"name"`
	Email    string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	CCCD     string    `gorm:"column:cccd;size:12;uniqueIndex;not null" json:"cccd"`
	Password string    `gorm:"type:text;not null" json:"-"`
	Role     UserRole  `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`

	// Hồ sơ hiện hành, cập nhật mỗi lần ghi nhận upload
	ActiveSubmissionID *uuid.UUID `gorm:"type:uuid" json:"active_submission_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
