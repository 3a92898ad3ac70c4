package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vnkhanh/cccd-review-backend/models"
)

const (
	DefaultSessionMaxAge    = 7 * 24 * time.Hour
	DefaultSessionUpdateAge = 24 * time.Hour
)

// Claims là nội dung phiên đăng nhập.
type Claims struct {
	UserID string          `json:"user_id"`
	Role   models.UserRole `json:"role"`
	CCCD   string          `json:"cccd"`
	jwt.RegisteredClaims
}

// TokenManager ký và kiểm tra token phiên. Token hết hạn tuyệt đối sau MaxAge kể từ
// lần phát hành; token cũ hơn UpdateAge được phát hành lại khi còn hoạt động.
type TokenManager struct {
	secret    []byte
	MaxAge    time.Duration
	UpdateAge time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, maxAge, updateAge time.Duration) *TokenManager {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	if updateAge <= 0 {
		updateAge = DefaultSessionUpdateAge
	}
	return &TokenManager{
		secret:    []byte(secret),
		MaxAge:    maxAge,
		UpdateAge: updateAge,
		now:       time.Now,
	}
}

func (m *TokenManager) GenerateToken(userID string, role models.UserRole, cccd string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		CCCD:   cccd,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.MaxAge)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token không hợp lệ")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("role không hợp lệ")
	}
	return claims, nil
}

// NeedsRenewal báo token đã quá UpdateAge kể từ lúc phát hành.
func (m *TokenManager) NeedsRenewal(claims *Claims) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return m.now().Sub(claims.IssuedAt.Time) >= m.UpdateAge
}

// SetClock thay nguồn thời gian, dùng trong test.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}
