package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/cccd-review-backend/config"
	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.AutoMigrate(db))
	return db
}

type event struct {
	UserID  string
	Payload interface{}
}

type fakeNotifier struct {
	mu        sync.Mutex
	users     []event
	reviewers []interface{}
}

func (n *fakeNotifier) NotifyUser(userID string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, event{UserID: userID, Payload: payload})
}

func (n *fakeNotifier) NotifyReviewers(payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewers = append(n.reviewers, payload)
}

func (n *fakeNotifier) reviewerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reviewers)
}

func (n *fakeNotifier) userEvents(userID string) []interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []interface{}
	for _, e := range n.users {
		if e.UserID == userID {
			out = append(out, e.Payload)
		}
	}
	return out
}

type sentMail struct {
	To, Subject string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	db            *gorm.DB
	notifier      *fakeNotifier
	mailer        *recordingMailer
	tokens        *utils.TokenManager
	auth          *AuthService
	submissions   *SubmissionService
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:       db,
		notifier: &fakeNotifier{},
		mailer:   &recordingMailer{},
		tokens:   utils.NewTokenManager("test-secret", 0, 0),
	}
	f.auth = NewAuthService(db, f.tokens, utils.NewValidator(), f.mailer)
	f.notifications = NewNotificationService(db, f.notifier)
	f.submissions = NewSubmissionService(db, f.notifier, f.notifications, f.mailer)
	return f
}

func (f *fixture) createUser(t *testing.T, name, email, cccd string, role models.UserRole) *models.User {
	t.Helper()
	in := RegisterInput{Email: email, Password: "secret123", CCCD: cccd, Name: name}
	u, err := f.auth.createUser(context.Background(), in, role)
	require.NoError(t, err)
	return u
}

func (f *fixture) upload(t *testing.T, owner *models.User, fileName string, at time.Time) *models.Submission {
	t.Helper()
	f.submissions.SetClock(func() time.Time { return at })
	sub, err := f.submissions.RecordUpload(context.Background(), RecordUploadInput{
		UserID:   owner.ID,
		FileKey:  "uploads/" + owner.ID.String() + "/" + uuid.NewString() + "-" + fileName,
		FileName: fileName,
		FileSize: 1024,
		MimeType: "application/pdf",
	})
	require.NoError(t, err)
	return sub
}
