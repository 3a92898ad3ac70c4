package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

const EventNotificationBadge = "notification_badge"

type NotificationService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewNotificationService(db *gorm.DB, notifier Notifier) *NotificationService {
	return &NotificationService{db: db, notifier: notifier}
}

func (s *NotificationService) Create(ctx context.Context, n models.Notification) (*models.Notification, error) {
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, errors.Wrap(err, "create notification")
	}
	s.pushBadge(ctx, n.UserID)
	return &n, nil
}

// List trả thông báo của user (mới nhất trước) cùng số chưa đọc.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, int64, error) {
	db := s.db.WithContext(ctx)
	list := []models.Notification{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list notifications")
	}
	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count unread notifications")
	}
	return count, nil
}

// MarkRead đánh dấu một thông báo của chính user là đã đọc.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("Không tìm thấy thông báo")
	}
	s.pushBadge(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		return errors.Wrap(err, "mark all notifications read")
	}
	s.notifier.NotifyUser(userID.String(), map[string]interface{}{"type": EventNotificationBadge, "unread_count": 0})
	return nil
}

// Gửi cập nhật badge realtime
func (s *NotificationService) pushBadge(ctx context.Context, userID uuid.UUID) {
	count, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return
	}
	s.notifier.NotifyUser(userID.String(), map[string]interface{}{"type": EventNotificationBadge, "unread_count": count})
}
