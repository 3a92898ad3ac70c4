package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

const (
	SessionCookie      = "session_token"
	SessionTokenHeader = "X-Session-Token"

	ContextUserID = "user_id"
	ContextRole   = "role"
)

// SetSessionCookie ghi token phiên vào cookie HttpOnly.
func SetSessionCookie(c *gin.Context, token string, maxAge time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(maxAge.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

// Lấy token theo thứ tự: Authorization, X-Auth-Token (cho iOS), cookie
func extractToken(c *gin.Context) string {
	for _, h := range []string{c.GetHeader("Authorization"), c.GetHeader("X-Auth-Token")} {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return h
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware xác thực phiên, nạp user_id / role / cccd vào context và gia hạn token
// khi token đã cũ hơn UpdateAge.
func AuthMiddleware(tokens *utils.TokenManager, auth *services.AuthService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Chưa đăng nhập"})
			return
		}

		claims, err := tokens.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
			return
		}

		// Kiểm tra user còn tồn tại trong DB
		user, err := auth.GetUser(c.Request.Context(), userID)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
				return
			}
			utils.ReportError("auth middleware: load user", err, nil)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Lỗi máy chủ nội bộ"})
			return
		}

		if tokens.NeedsRenewal(claims) {
			if session, err := auth.IssueSession(user); err == nil {
				SetSessionCookie(c, session.Token, tokens.MaxAge, secureCookie)
				c.Header(SessionTokenHeader, session.Token)
			} else {
				log.Printf("Không gia hạn được phiên user=%s: %v", user.ID, err)
			}
		}

		c.Set(ContextUserID, user.ID.String())
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// CurrentUserID trả id user đã xác thực; ok=false nếu request chưa qua AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func CurrentRole(c *gin.Context) (models.UserRole, bool) {
	v, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := v.(models.UserRole)
	return role, ok && role.Valid()
}
