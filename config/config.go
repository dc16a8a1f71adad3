package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	GinMode        string
	LogDev         bool
	LogLevel       string
	AppBaseURL     string
	CORSOrigins    []string
	TrustedProxies []string // empty means client ip is the socket peer
	MaxUploadBytes int64

	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Mail      MailConfig
	RateLimit int // requests per minute per client ip on public auth routes, 0 disables
}

type AuthConfig struct {
	JWTSecret      string
	JWTTTL         time.Duration
	OTPTTL         time.Duration
	ResetTTL       time.Duration
	OTPMaxAttempts int
}

type RedisConfig struct {
	URL string
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type StorageConfig struct {
	Driver      string
	UploadDir   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

const (
	MailLog   = "log"
	MailSMTP  = "smtp"
	MailBrevo = "brevo"
)

type MailConfig struct {
	Driver          string
	From            string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	BrevoAPIKey     string
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:           v.GetString("port"),
		GinMode:        v.GetString("gin_mode"),
		LogDev:         v.GetBool("log_dev"),
		LogLevel:       v.GetString("log_level"),
		AppBaseURL:     strings.TrimRight(v.GetString("app_base_url"), "/"),
		CORSOrigins:    splitList(v.GetString("cors_origins")),
		TrustedProxies: splitList(v.GetString("trusted_proxies")),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		Auth: AuthConfig{
			JWTSecret:      v.GetString("jwt_secret"),
			JWTTTL:         v.GetDuration("jwt_ttl"),
			OTPTTL:         v.GetDuration("otp_ttl"),
			ResetTTL:       v.GetDuration("reset_ttl"),
			OTPMaxAttempts: v.GetInt("otp_max_attempts"),
		},
		Database: loadDatabaseConfig(v),
		Redis:    RedisConfig{URL: v.GetString("redis_url")},
		Storage: StorageConfig{
			Driver:      v.GetString("storage_driver"),
			UploadDir:   v.GetString("upload_dir"),
			S3Bucket:    v.GetString("s3_bucket"),
			S3Region:    v.GetString("s3_region"),
			S3Endpoint:  v.GetString("s3_endpoint"),
			S3AccessKey: v.GetString("s3_access_key"),
			S3SecretKey: v.GetString("s3_secret_key"),
		},
		Mail: MailConfig{
			Driver:          v.GetString("mail_driver"),
			From:            v.GetString("mail_from"),
			SMTPHost:        v.GetString("smtp_host"),
			SMTPPort:        v.GetInt("smtp_port"),
			SMTPUser:        v.GetString("smtp_user"),
			SMTPPass:        v.GetString("smtp_pass"),
			BrevoAPIKey:     v.GetString("brevo_api_key"),
			BreakerFailures: v.GetUint32("mail_breaker_failures"),
			BreakerTimeout:  v.GetDuration("mail_breaker_timeout"),
		},
		RateLimit: v.GetInt("rate_limit_per_minute"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_dev", false)
	v.SetDefault("log_level", "")
	v.SetDefault("app_base_url", "http://localhost:5173")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("max_upload_bytes", 10<<20)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", time.Hour)
	v.SetDefault("otp_ttl", 10*time.Minute)
	v.SetDefault("reset_ttl", time.Hour)
	v.SetDefault("otp_max_attempts", 5)

	setDatabaseDefaults(v)

	v.SetDefault("redis_url", "")
	v.SetDefault("rate_limit_per_minute", 60)

	v.SetDefault("storage_driver", StorageLocal)
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")

	v.SetDefault("mail_driver", MailLog)
	v.SetDefault("mail_from", "Noteshelf <no-reply@noteshelf.local>")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_pass", "")
	v.SetDefault("brevo_api_key", "")
	v.SetDefault("mail_breaker_failures", 5)
	v.SetDefault("mail_breaker_timeout", 30*time.Second)
}

// Validate reports configuration that would make the selected drivers fail
// at first use. A missing JWT secret is tolerated; the auth gate reports it.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for local storage")
		}
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Mail.Driver {
	case MailLog:
	case MailSMTP:
		if c.Mail.SMTPHost == "" {
			return errors.New("SMTP_HOST is required for smtp mail")
		}
	case MailBrevo:
		if c.Mail.BrevoAPIKey == "" {
			return errors.New("BREVO_API_KEY is required for brevo mail")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
