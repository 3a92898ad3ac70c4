package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	EventSubmissionListChanged   = "submission_list_changed"
	EventSubmissionStatusChanged = "submission_status_changed"
)

// % và _ trong từ khóa được so khớp như ký tự thường
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Notifier đẩy sự kiện realtime; ws.Hub là bản cài đặt.
type Notifier interface {
	NotifyUser(userID string, payload interface{})
	NotifyReviewers(payload interface{})
}

type RecordUploadInput struct {
	UserID   uuid.UUID
	FileKey  string
	FileName string
	FileSize int64
	MimeType string
}

type ListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

type SubmissionPage struct {
	Data       []models.Submission `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

type SubmissionService struct {
	db            *gorm.DB
	notifier      Notifier
	notifications *NotificationService
	mailer        utils.Mailer
	now           func() time.Time
}

func NewSubmissionService(db *gorm.DB, notifier Notifier, notifications *NotificationService, mailer utils.Mailer) *SubmissionService {
	return &SubmissionService{
		db:            db,
		notifier:      notifier,
		notifications: notifications,
		mailer:        mailer,
		now:           time.Now,
	}
}

// SetClock thay nguồn thời gian, dùng trong test.
func (s *SubmissionService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordUpload ghi nhận file client đã PUT lên storage. Không kiểm tra object có tồn tại
// thật ở FileKey hay không; status luôn là PENDING.
func (s *SubmissionService) RecordUpload(ctx context.Context, in RecordUploadInput) (*models.Submission, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.FileKey) == "" {
		fields["fileKey"] = "Thiếu fileKey"
	}
	if strings.TrimSpace(in.FileName) == "" {
		fields["fileName"] = "Thiếu tên file"
	}
	if strings.TrimSpace(in.MimeType) == "" {
		fields["mimeType"] = "Thiếu loại file"
	}
	if in.FileSize <= 0 {
		fields["fileSize"] = "Kích thước file không hợp lệ"
	}
	if len(fields) > 0 {
		return nil, utils.NewValidationError("Dữ liệu không hợp lệ", fields)
	}

	sub := models.Submission{
		UserID:     in.UserID,
		FileKey:    in.FileKey,
		FileName:   in.FileName,
		FileSize:   in.FileSize,
		MimeType:   in.MimeType,
		Status:     models.StatusPending,
		UploadedAt: s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Select("id").First(&owner, "id = ?", in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Người dùng không tồn tại")
			}
			return errors.Wrap(err, "find owner")
		}
		if err := tx.Create(&sub).Error; err != nil {
			return errors.Wrap(err, "create submission")
		}
		// Hồ sơ hiện hành = bản vừa upload
		if err := tx.Model(&models.User{}).Where("id = ?", in.UserID).
			Update("active_submission_id", sub.ID).Error; err != nil {
			return errors.Wrap(err, "set active submission")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[submission] recorded id=%s user=%s key=%s size=%d", sub.ID, sub.UserID, sub.FileKey, sub.FileSize)
	s.notifier.NotifyReviewers(map[string]string{"type": EventSubmissionListChanged})
	return &sub, nil
}

// SetStatus chuyển trạng thái hồ sơ, không phụ thuộc trạng thái trước. Người gọi phải là
// TEACHER. Không có version: hai giảng viên duyệt cùng lúc thì lần ghi sau thắng.
func (s *SubmissionService) SetStatus(ctx context.Context, submissionID uuid.UUID, status models.SubmissionStatus, actorID uuid.UUID, comment string) (*models.Submission, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError("Trạng thái không hợp lệ", map[string]string{
			"status": "Trạng thái phải là PENDING, APPROVED hoặc REJECTED",
		})
	}
	db := s.db.WithContext(ctx)

	var sub models.Submission
	if err := db.First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Không tìm thấy file")
		}
		return nil, errors.Wrap(err, "find submission")
	}
	prev := sub.Status

	updates := map[string]interface{}{"status": status}
	if status.Reviewed() {
		updates["approved_at"] = s.now()
		updates["approved_by"] = actorID
	} else {
		updates["approved_at"] = nil
		updates["approved_by"] = nil
	}
	if err := db.Model(&models.Submission{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "update submission status")
	}

	log.Printf("[review] submission=%s %s -> %s by=%s", sub.ID, prev, status, actorID)

	updated, err := s.GetByID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, updated, comment)
	return updated, nil
}

// afterStatusChange: thông báo, realtime và email đều best-effort, lỗi chỉ ghi log.
func (s *SubmissionService) afterStatusChange(ctx context.Context, sub *models.Submission, comment string) {
	title, message := reviewMessage(sub, comment)
	if s.notifications != nil {
		subID := sub.ID
		if _, err := s.notifications.Create(ctx, models.Notification{
			UserID:       sub.UserID,
			Title:        title,
			Message:      message,
			Type:         models.NotificationSubmissionReviewed,
			SubmissionID: &subID,
		}); err != nil {
			log.Printf("Lỗi tạo thông báo cho submission=%s: %v", sub.ID, err)
		}
	}

	s.notifier.NotifyUser(sub.UserID.String(), map[string]string{
		"type":          EventSubmissionStatusChanged,
		"submission_id": sub.ID.String(),
		"status":        string(sub.Status),
		"comment":       comment,
	})
	s.notifier.NotifyReviewers(map[string]string{"type": EventSubmissionListChanged})

	if sub.User != nil {
		html := "<p>" + message + "</p><hr><p><i>Đây là email tự động, vui lòng không trả lời.</i></p>"
		utils.SendAsync(s.mailer, sub.User.Email, title, message, html)
	}
}

func statusLabel(st models.SubmissionStatus) string {
	switch st {
	case models.StatusApproved:
		return "đã được duyệt"
	case models.StatusRejected:
		return "bị từ chối"
	case models.StatusPending:
		return "đang chờ duyệt lại"
	}
	return string(st)
}

func reviewMessage(sub *models.Submission, comment string) (string, string) {
	title := "Kết quả duyệt hồ sơ"
	msg := fmt.Sprintf("Hồ sơ \"%s\" của bạn %s.", sub.FileName, statusLabel(sub.Status))
	if c := strings.TrimSpace(comment); c != "" {
		msg += " Nhận xét: " + c
	}
	return title, msg
}

func (s *SubmissionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.WithContext(ctx).Preload("User").Preload("Approver").First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Không tìm thấy file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get submission")
	}
	return &sub, nil
}

// GetOwned chỉ trả hồ sơ thuộc ownerID; hồ sơ của người khác coi như không tồn tại.
func (s *SubmissionService) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.WithContext(ctx).First(&sub, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Không tìm thấy file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get owned submission")
	}
	return &sub, nil
}

// GetByUser trả hồ sơ hiện hành (bản upload gần nhất) của sinh viên.
func (s *SubmissionService) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Submission, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Không tìm thấy sinh viên")
		}
		return nil, errors.Wrap(err, "find user")
	}

	var sub models.Submission
	q := db.Preload("User").Preload("Approver")
	var err error
	if user.ActiveSubmissionID != nil {
		err = q.First(&sub, "id = ? AND user_id = ?", *user.ActiveSubmissionID, userID).Error
	} else {
		err = q.Where("user_id = ?", userID).Order("uploaded_at DESC").First(&sub).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Sinh viên chưa nộp hồ sơ")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get latest submission")
	}
	return &sub, nil
}

// ListByOwner: mọi hồ sơ của chính user, mới nhất trước.
func (s *SubmissionService) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	subs := []models.Submission{}
	if err := s.db.WithContext(ctx).Preload("Approver").
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&subs).Error; err != nil {
		return nil, errors.Wrap(err, "list own submissions")
	}
	return subs, nil
}

// ListSubmissions phân trang cho trang duyệt, lọc theo trạng thái và tìm theo
// tên / email / CCCD của chủ hồ sơ (không phân biệt hoa thường).
func (s *SubmissionService) ListSubmissions(ctx context.Context, lq ListQuery) (*SubmissionPage, error) {
	page, limit := lq.Page, lq.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := s.db.WithContext(ctx).Model(&models.Submission{})

	// lọc theo trạng thái
	if status := strings.ToUpper(strings.TrimSpace(lq.Status)); status != "" && status != models.StatusAll {
		st := models.SubmissionStatus(status)
		if !st.Valid() {
			return nil, utils.NewValidationError("Trạng thái lọc không hợp lệ", map[string]string{
				"status": "Trạng thái phải là ALL, PENDING, APPROVED hoặc REJECTED",
			})
		}
		query = query.Where("submissions.status = ?", st)
	}

	// tìm kiếm theo chủ hồ sơ
	if search := strings.TrimSpace(lq.Search); search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Joins("JOIN users ON users.id = submissions.user_id").
			Where(`(LOWER(users.name) LIKE ? ESCAPE '\' OR LOWER(users.email) LIKE ? ESCAPE '\' OR users.cccd LIKE ? ESCAPE '\')`, like, like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count submissions")
	}

	subs := []models.Submission{}
	if err := query.Session(&gorm.Session{}).
		Preload("User").Preload("Approver").
		Order("submissions.uploaded_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&subs).Error; err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}

	return &SubmissionPage{
		Data:       subs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}
