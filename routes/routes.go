package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/cccd-review-backend/controllers"
	"github.com/vnkhanh/cccd-review-backend/middleware"
	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/storage"
	"github.com/vnkhanh/cccd-review-backend/utils"
	"github.com/vnkhanh/cccd-review-backend/ws"
)

// Dependencies là mọi thứ main dựng sẵn để đăng ký route.
type Dependencies struct {
	DB            *gorm.DB
	Tokens        *utils.TokenManager
	Auth          *services.AuthService
	Submissions   *services.SubmissionService
	Notifications *services.NotificationService
	Gateway       *storage.Gateway
	Hub           *ws.Hub
	SecureCookie  bool
	WSOrigins     []string
}

func SetupRouter(r *gin.Engine, d Dependencies) *gin.Engine {
	authCtrl := controllers.NewAuthController(d.Auth, d.Tokens, d.SecureCookie)
	uploadCtrl := controllers.NewUploadController(d.Gateway, d.Submissions)
	fileCtrl := controllers.NewFileController(d.Gateway, d.Submissions)
	reviewCtrl := controllers.NewReviewController(d.Gateway, d.Submissions)
	notifCtrl := controllers.NewNotificationController(d.Notifications)
	statsCtrl := controllers.NewStatsController(d.Submissions)
	wsHandler := ws.NewHandler(d.Hub, d.Tokens, d.WSOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(d.DB, d.Hub))

	r.POST("/register", authCtrl.Register)
	r.POST("/login", authCtrl.Login)
	r.POST("/logout", authCtrl.Logout)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Tokens, d.Auth, d.SecureCookie))
	{
		api.GET("/me", authCtrl.Me)
		api.PUT("/me/password", authCtrl.ChangePassword)

		// Hồ sơ của chính mình
		api.GET("/files/user/:userId", fileCtrl.ListByUser)
		api.GET("/files/:fileId/download", fileCtrl.Download)

		// Thông báo
		api.GET("/notifications", notifCtrl.GetNotifications)
		api.PATCH("/notifications/read-all", notifCtrl.MarkAllAsRead)
		api.PATCH("/notifications/:id/read", notifCtrl.MarkNotificationAsRead)
	}

	upload := api.Group("/upload")
	upload.Use(middleware.RequireStudent())
	{
		upload.POST("/presigned-url", uploadCtrl.PresignedURL)
		upload.POST("/complete", uploadCtrl.Complete)
	}

	admin := api.Group("/admin")
	{
		// Duyệt hồ sơ: chỉ giảng viên
		review := admin.Group("", middleware.RequireTeacher())
		review.GET("/submissions", reviewCtrl.ListSubmissions)
		review.GET("/student/:id", reviewCtrl.GetStudentSubmission)
		review.GET("/files/:fileId/download", reviewCtrl.Download)
		review.PUT("/approval", reviewCtrl.SetApproval)
		review.GET("/stats", statsCtrl.GetReviewStats)

		// Quản lý tài khoản giảng viên
		admin.POST("/teachers", middleware.RequireAdmin(), authCtrl.CreateTeacher)
	}

	r.GET("/ws/user", wsHandler.HandleUserWebSocket)
	r.GET("/ws/submissions", wsHandler.HandleReviewWebSocket)

	return r
}
