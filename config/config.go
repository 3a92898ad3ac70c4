package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/cccd-review-backend/models"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	SessionMaxAge    time.Duration
	SessionUpdateAge time.Duration
	CookieSecure     bool

	CORSOrigins []string

	StorageDriver string // s3 | supabase | oss
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3PathStyle   bool

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	OSSEndpoint  string
	OSSKeyID     string
	OSSKeySecret string
	OSSBucket    string

	MailDriver    string // smtp | sendgrid | log
	SMTPHost      string
	SMTPPort      string
	SMTPEmail     string
	SMTPPassword  string
	SendGridKey   string
	MailFromName  string
	MailFromEmail string
	RollbarToken  string

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminCCCD     string
}

// Load đọc .env (nếu có) rồi biến môi trường.
func Load() (*Config, error) {
	// Không có .env vẫn chạy được bằng biến môi trường
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "cccd_review"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionMaxAge:    getDuration("SESSION_MAX_AGE", 7*24*time.Hour),
		SessionUpdateAge: getDuration("SESSION_UPDATE_AGE", 24*time.Hour),
		CookieSecure:     getBool("COOKIE_SECURE", false),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "s3")),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      getEnv("S3_REGION", "ap-southeast-1"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PathStyle:   getBool("S3_USE_PATH_STYLE", false),

		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseBucket: getEnv("SUPABASE_BUCKET", "uploads"),

		OSSEndpoint:  os.Getenv("OSS_ENDPOINT"),
		OSSKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
		OSSKeySecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
		OSSBucket:    os.Getenv("OSS_BUCKET"),

		MailDriver:    strings.ToLower(getEnv("MAIL_DRIVER", "log")),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPEmail:     os.Getenv("SMTP_EMAIL"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SendGridKey:   os.Getenv("SENDGRID_API_KEY"),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Hồ sơ CCCD"),
		MailFromEmail: getEnv("MAIL_FROM_EMAIL", os.Getenv("SMTP_EMAIL")),
		RollbarToken:  os.Getenv("ROLLBAR_TOKEN"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Quản trị viên"),
		AdminCCCD:     os.Getenv("ADMIN_CCCD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET chưa cấu hình")
	}
	switch c.StorageDriver {
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET chưa cấu hình")
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")
		}
	case "oss":
		if c.OSSEndpoint == "" || c.OSSBucket == "" {
			return errors.New("OSS_ENDPOINT hoặc OSS_BUCKET chưa cấu hình")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER không hỗ trợ: %s", c.StorageDriver)
	}
	switch c.MailDriver {
	case "smtp", "sendgrid", "log":
	default:
		return fmt.Errorf("MAIL_DRIVER không hỗ trợ: %s", c.MailDriver)
	}
	return nil
}

// DSN cho PostgreSQL
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Ho_Chi_Minh",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// InitDB kết nối PostgreSQL, cấu hình pool và AutoMigrate.
func InitDB(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "không thể kết nối database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "không thể lấy sql.DB từ gorm")
	}

	// Connection Pooling config
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Submission{},
		&models.Notification{},
	); err != nil {
		return errors.Wrap(err, "autoMigrate lỗi")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
