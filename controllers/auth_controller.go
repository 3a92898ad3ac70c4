package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/middleware"
	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

type AuthController struct {
	auth         *services.AuthService
	tokens       *utils.TokenManager
	secureCookie bool
}

func NewAuthController(auth *services.AuthService, tokens *utils.TokenManager, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, tokens: tokens, secureCookie: secureCookie}
}

// Register: sinh viên tự đăng ký. Trường role trong body (nếu có) bị bỏ qua.
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đăng ký thành công",
		"user":    user,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	session, err := ac.auth.Authenticate(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetSessionCookie(c, session.Token, ac.tokens.MaxAge, ac.secureCookie)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Đăng nhập thành công",
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       session.User,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, ac.secureCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Đăng xuất thành công"})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := ac.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input services.ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ac.auth.ChangePassword(c.Request.Context(), userID, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đổi mật khẩu thành công"})
}

// CreateTeacher: ADMIN cấp tài khoản giảng viên.
func (ac *AuthController) CreateTeacher(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.auth.CreateTeacher(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo tài khoản giảng viên thành công",
		"user":    user,
	})
}
