package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

var (
	errBadCredentials = utils.NewAuthenticationError("Email hoặc mật khẩu không đúng")
	errEmailTaken     = utils.NewConflictError("Email đã được sử dụng")
	errCCCDTaken      = utils.NewConflictError("Số CCCD đã được đăng ký")
	errDuplicateUser  = utils.NewConflictError("Email hoặc số CCCD đã được đăng ký")
)

// RegisterInput dùng cho đăng ký sinh viên và tạo tài khoản giảng viên.
// Không có trường role: role do server quyết định.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	CCCD     string `json:"cccd" validate:"required,cccd"`
	Name     string `json:"name" validate:"required,max=150"`
}

func (in *RegisterInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.CCCD = strings.TrimSpace(in.CCCD)
	in.Name = strings.TrimSpace(in.Name)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// Session là phiên đăng nhập đã phát hành.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type AuthService struct {
	db        *gorm.DB
	tokens    *utils.TokenManager
	validator *utils.Validator
	mailer    utils.Mailer
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, v *utils.Validator, mailer utils.Mailer) *AuthService {
	return &AuthService{db: db, tokens: tokens, validator: v, mailer: mailer}
}

// Register tạo tài khoản sinh viên. Role luôn là STUDENT.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, models.RoleStudent)
}

// CreateTeacher do ADMIN gọi, tạo tài khoản giảng viên và gửi mail báo (không chặn luồng).
func (s *AuthService) CreateTeacher(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.createUser(ctx, in, models.RoleTeacher)
	if err != nil {
		return nil, err
	}
	subject := "Tài khoản giảng viên của bạn đã được tạo"
	text := fmt.Sprintf("Xin chào %s, bạn đã được cấp tài khoản giảng viên. Email đăng nhập: %s", user.Name, user.Email)
	html := `<h3>Xin chào ` + user.Name + `,</h3>
		<p>Bạn đã được cấp tài khoản giảng viên trên hệ thống duyệt hồ sơ CCCD.</p>
		<p><b>Email đăng nhập:</b> ` + user.Email + `</p>
		<p>Vui lòng đăng nhập và đổi mật khẩu sau khi sử dụng lần đầu.</p>
		<hr>
		<p><i>Đây là email tự động, vui lòng không trả lời.</i></p>`
	utils.SendAsync(s.mailer, user.Email, subject, text, html)
	return user, nil
}

// EnsureAdmin tạo tài khoản ADMIN khi khởi động nếu email chưa tồn tại.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	in.normalize()
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(err, "find admin")
	}
	user, err := s.createUser(ctx, in, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role models.UserRole) (*models.User, error) {
	in.normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	// Check email / CCCD tồn tại
	var existing []models.User
	if err := db.Select("email", "cccd").Where("email = ? OR cccd = ?", in.Email, in.CCCD).Find(&existing).Error; err != nil {
		return nil, errors.Wrap(err, "check user uniqueness")
	}
	for _, u := range existing {
		if u.Email == in.Email {
			return nil, errEmailTaken
		}
	}
	if len(existing) > 0 {
		return nil, errCCCDTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		CCCD:     in.CCCD,
		Password: string(hashed),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		// Hai request trùng chạy song song: unique index quyết định
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateUser
		}
		return nil, errors.Wrap(err, "create user")
	}
	log.Printf("Tạo tài khoản %s: id=%s email=%s", role, user.ID, user.Email)
	return &user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (*Session, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, errBadCredentials
	}
	return s.IssueSession(&user)
}

// IssueSession phát hành token mới cho user (đăng nhập hoặc gia hạn).
func (s *AuthService) IssueSession(user *models.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.ID.String(), user.Role, user.CCCD)
	if err != nil {
		return nil, errors.Wrap(err, "sign session token")
	}
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "verify fresh token")
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Người dùng không tồn tại")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		return utils.NewAuthenticationError("Mật khẩu cũ không đúng")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hashed)).Error; err != nil {
		return errors.Wrap(err, "update password")
	}
	return nil
}
