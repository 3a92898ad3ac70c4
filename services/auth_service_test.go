package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

func TestRegisterCreatesStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, RegisterInput{
		Email:    "  An.Nguyen@Example.com ",
		Password: "secret123",
		CCCD:     "012345678901",
		Name:     "Nguyen Van An",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.Equal(t, "an.nguyen@example.com", u.Email)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Nil(t, u.ActiveSubmissionID)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", u.ID).Error)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	valid := RegisterInput{Email: "a@example.com", Password: "secret123", CCCD: "012345678901", Name: "A"}

	tests := []struct {
		name   string
		mutate func(in *RegisterInput)
		field  string
	}{
		{"email sai định dạng", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"mật khẩu quá ngắn", func(in *RegisterInput) { in.Password = "123" }, "password"},
		{"cccd 11 chữ số", func(in *RegisterInput) { in.CCCD = "01234567890" }, "cccd"},
		{"cccd có chữ", func(in *RegisterInput) { in.CCCD = "01234567890a" }, "cccd"},
		{"thiếu tên", func(in *RegisterInput) { in.Name = "   " }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.auth.Register(context.Background(), in)
			require.Error(t, err)
			assert.True(t, utils.IsKind(err, utils.KindValidation))

			var appErr *utils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}

	var count int64
	f.db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret123", CCCD: "012345678901", Name: "A"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"trùng email", RegisterInput{Email: "A@example.com", Password: "other123", CCCD: "111111111111", Name: "B"}, "Email đã được sử dụng"},
		{"trùng cccd", RegisterInput{Email: "b@example.com", Password: "other123", CCCD: "012345678901", Name: "B"}, "Số CCCD đã được đăng ký"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.in)
			require.Error(t, err)
			assert.True(t, utils.IsKind(err, utils.KindConflict))
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	var count int64
	f.db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", first.ID).Error)
	assert.Equal(t, "A", stored.Name)
	assert.Equal(t, first.Password, stored.Password)
}

// Request khác ghi cùng email ngay sau bước kiểm tra trùng: unique index phải chặn.
func TestRegisterDuplicateCaughtByUniqueIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fired := false
	const hook = "test:concurrent_register"
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register(hook, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "users" {
			return
		}
		fired = true
		tx.AddError(f.db.Session(&gorm.Session{NewDB: true}).Create(&models.User{
			Name: "Khac", Email: "a@example.com", CCCD: "111111111111", Password: "x", Role: models.RoleStudent,
		}).Error)
	}))
	t.Cleanup(func() { _ = f.db.Callback().Query().Remove(hook) })

	_, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret123", CCCD: "012345678901", Name: "A"})
	require.True(t, fired)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.Equal(t, "Email hoặc số CCCD đã được đăng ký", err.Error())

	var users []models.User
	require.NoError(t, f.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "Khac", users[0].Name)
}

func TestCreateTeacherSendsMail(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.CreateTeacher(context.Background(), RegisterInput{
		Email: "gv@example.com", Password: "secret123", CCCD: "999999999999", Name: "Giang Vien",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, u.Role)
	assert.Eventually(t, func() bool { return f.mailer.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := RegisterInput{Email: "admin@example.com", Password: "secret123", CCCD: "000000000001", Name: "Admin"}

	u, created, err := f.auth.EnsureAdmin(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, u.Role)

	again, created, err := f.auth.EnsureAdmin(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "A", "a@example.com", "012345678901", models.RoleStudent)

	session, err := f.auth.Authenticate(ctx, LoginInput{Email: "A@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.User.ID)
	assert.True(t, session.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))

	claims, err := f.tokens.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "012345678901", claims.CCCD)

	tests := []struct {
		name string
		in   LoginInput
	}{
		{"sai mật khẩu", LoginInput{Email: "a@example.com", Password: "wrong"}},
		{"email không tồn tại", LoginInput{Email: "nobody@example.com", Password: "secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Authenticate(ctx, tt.in)
			require.Error(t, err)
			assert.True(t, utils.IsKind(err, utils.KindAuthentication))
		})
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "A", "a@example.com", "012345678901", models.RoleStudent)

	err := f.auth.ChangePassword(ctx, u.ID, ChangePasswordInput{OldPassword: "wrong", NewPassword: "newpass123"})
	assert.True(t, utils.IsKind(err, utils.KindAuthentication))

	require.NoError(t, f.auth.ChangePassword(ctx, u.ID, ChangePasswordInput{OldPassword: "secret123", NewPassword: "newpass123"}))

	_, err = f.auth.Authenticate(ctx, LoginInput{Email: "a@example.com", Password: "secret123"})
	assert.Error(t, err)
	_, err = f.auth.Authenticate(ctx, LoginInput{Email: "a@example.com", Password: "newpass123"})
	assert.NoError(t, err)
}

func TestGetUserNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.GetUser(context.Background(), uuid.New())
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
