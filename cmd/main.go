package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/cccd-review-backend/config"
	"github.com/vnkhanh/cccd-review-backend/middleware"
	"github.com/vnkhanh/cccd-review-backend/routes"
	"github.com/vnkhanh/cccd-review-backend/services"
	"github.com/vnkhanh/cccd-review-backend/storage"
	"github.com/vnkhanh/cccd-review-backend/utils"
	"github.com/vnkhanh/cccd-review-backend/ws"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Lỗi cấu hình: %v", err)
	}

	utils.InitErrorReporting(cfg.RollbarToken, cfg.Env, version)
	defer utils.CloseErrorReporting()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Lỗi kết nối DB: %v", err)
	}
	log.Println("Kết nối DB thành công")

	presigner, err := newPresigner(cfg)
	if err != nil {
		log.Fatalf("Lỗi khởi tạo storage: %v", err)
	}
	mailer := newMailer(cfg)

	hub := ws.NewHub()
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.SessionMaxAge, cfg.SessionUpdateAge)
	authSvc := services.NewAuthService(db, tokens, utils.NewValidator(), mailer)
	notifSvc := services.NewNotificationService(db, hub)
	submissionSvc := services.NewSubmissionService(db, hub, notifSvc, mailer)

	if cfg.AdminEmail != "" {
		admin, created, err := authSvc.EnsureAdmin(context.Background(), services.RegisterInput{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			CCCD:     cfg.AdminCCCD,
			Name:     cfg.AdminName,
		})
		if err != nil {
			log.Fatalf("Không tạo được tài khoản admin: %v", err)
		}
		if created {
			log.Printf("Đã tạo tài khoản admin %s", admin.Email)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length", middleware.SessionTokenHeader},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, routes.Dependencies{
		DB:            db,
		Tokens:        tokens,
		Auth:          authSvc,
		Submissions:   submissionSvc,
		Notifications: notifSvc,
		Gateway:       storage.NewGateway(presigner),
		Hub:           hub,
		SecureCookie:  cfg.CookieSecure,
		WSOrigins:     cfg.CORSOrigins,
	})

	// Route test server
	r.GET("/", func(c *gin.Context) {
		c.String(200, "CCCD review server is running")
	})

	log.Println("Server running at Port:" + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server dừng: %v", err)
	}
}

func newPresigner(cfg *config.Config) (storage.Presigner, error) {
	switch cfg.StorageDriver {
	case "supabase":
		return storage.NewSupabasePresigner(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	case "oss":
		return storage.NewOSSPresigner(storage.OSSConfig{
			Endpoint:        cfg.OSSEndpoint,
			AccessKeyID:     cfg.OSSKeyID,
			AccessKeySecret: cfg.OSSKeySecret,
			Bucket:          cfg.OSSBucket,
		})
	default:
		return storage.NewS3Presigner(storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			UsePathStyle:    cfg.S3PathStyle,
		}), nil
	}
}

func newMailer(cfg *config.Config) utils.Mailer {
	switch cfg.MailDriver {
	case "smtp":
		return &utils.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPEmail,
			Password: cfg.SMTPPassword,
		}
	case "sendgrid":
		return utils.NewSendGridMailer(cfg.SendGridKey, cfg.MailFromName, cfg.MailFromEmail)
	default:
		return utils.LogMailer{}
	}
}
