package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=hotelmaint port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	DEFAULT_LOCALE          = "es"
	SIGNED_URL_TTL          = time.Hour
	ESCALATION_AGE          = time.Hour
	SESSION_CACHE_TTL       = 5 * time.Minute
	IDEMPOTENCY_TTL         = 24 * time.Hour
	REALTIME_DEBOUNCE       = 500 * time.Millisecond
	MAX_IMAGE_DIMENSION     = 1920
	JPEG_QUALITY            = 80
	MAX_VIDEO_BYTES         = 100 << 20
	MAX_IMAGE_UPLOAD_BYTES  = 25 << 20
	TICKET_CHANNEL          = "changes:tickets"
	NOTIFICATION_CHANNEL    = "changes:notifications"
	DEFAULT_ESCALATION_TICK = time.Minute
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Env() string { return getenv("API_ENV", "local") }

func Port() string { return getenv("API_PORT", "8080") }

func JWTSecret() string { return os.Getenv("JWT_SECRET") }

// StoreDriver is postgres or memory.
func StoreDriver() string { return strings.ToLower(getenv("STORE_DRIVER", "postgres")) }

// MailDriver is smtp, ses, sqs or log.
func MailDriver() string { return strings.ToLower(getenv("MAIL_DRIVER", "log")) }

func MediaBucket() string { return os.Getenv("S3_MEDIA_BUCKET") }

func AppHost() string { return getenv("APP_HOST", "http://localhost:3000") }

func MaintenanceMode() bool { return os.Getenv("MAINTENANCE_MODE") == "true" }

// EscalationInterval parses ESCALATION_INTERVAL as a Go duration.
func EscalationInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("ESCALATION_INTERVAL"))
	if err != nil || d <= 0 {
		return DEFAULT_ESCALATION_TICK
	}
	return d
}

// AllowedOrigins is the comma separated CORS_ORIGINS list, APP_HOST by default.
func AllowedOrigins() []string {
	raw := getenv("CORS_ORIGINS", AppHost())
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
