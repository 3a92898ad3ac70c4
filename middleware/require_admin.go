package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/models"
)

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập.
// Phải đặt sau AuthMiddleware.
func RequireRoles(allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được vai trò người dùng"})
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		// Nếu không khớp role nào
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Bạn không có quyền truy cập tài nguyên này",
		})
	}
}

// RequireAdmin chỉ cho ADMIN.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// RequireTeacher chỉ cho TEACHER; ADMIN không duyệt hồ sơ.
func RequireTeacher() gin.HandlerFunc {
	return RequireRoles(models.RoleTeacher)
}

func RequireStudent() gin.HandlerFunc {
	return RequireRoles(models.RoleStudent)
}
