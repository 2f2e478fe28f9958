package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// const dsn = "host=localhost user=postgres password=password dbname=clubdb port=5432 sslmode=disable TimeZone=America/Sao_Paulo"

const (
	TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
	DATE_FORMAT       = "2006-01-02"
)

var v = viper.New()

func init() {
	v.AutomaticEnv()
	v.SetDefault("API_ENV", "local")
	v.SetDefault("API_PORT", "9090")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_TIMEZONE", "UTC")
	v.SetDefault("DATABASE_MAX_IDLE", 10)
	v.SetDefault("DATABASE_MAX_OPEN", 100)
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("TEMP_DIR", "tmp")
	v.SetDefault("QR_URL_TTL", "1h")
	v.SetDefault("STATS_CACHE_TTL", "10m")
	v.SetDefault("SIGNIN_MAX_ATTEMPTS", 5)
	v.SetDefault("SIGNIN_WINDOW", "15m")
	v.SetDefault("EVENT_COMPLETE_AFTER", "12h")
	v.SetDefault("HOUSEKEEPING_INTERVAL", "15m")
	v.SetDefault("FLYER_MAX_BYTES", 5<<20)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM_NAME", "Club Desk")
	v.SetDefault("MAINTENANCE_MODE", "false")
}

func GetDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		v.GetString("DATABASE_HOST"),
		v.GetString("DATABASE_USER"),
		v.GetString("DATABASE_PASSWORD"),
		v.GetString("DATABASE_NAME"),
		v.GetString("DATABASE_PORT"),
		v.GetString("DATABASE_SSLMODE"),
		v.GetString("DATABASE_TIMEZONE"),
	)
}

func DBPool() (maxIdle int, maxOpen int) {
	return v.GetInt("DATABASE_MAX_IDLE"), v.GetInt("DATABASE_MAX_OPEN")
}

func APIEnv() string {
	return v.GetString("API_ENV")
}

func APIPort() string {
	return v.GetString("API_PORT")
}

func AppHost() string {
	return v.GetString("APP_HOST")
}

func TLSEnabled() bool {
	return v.GetBool("TLS_ENABLE")
}

// MaintenanceMode is true when MAINTENANCE_MODE is set to a true value or
// cannot be parsed at all.
func MaintenanceMode() bool {
	raw := strings.TrimSpace(v.GetString("MAINTENANCE_MODE"))
	switch strings.ToLower(raw) {
	case "false", "0", "f", "no", "":
		return false
	}
	return true
}

func JWTSecret() []byte {
	return []byte(v.GetString("JWT_SECRET"))
}

func JWTTTL() time.Duration {
	return v.GetDuration("JWT_TTL")
}

func RedisURL() string {
	return v.GetString("REDIS_HOST")
}

func TempDir() string {
	return v.GetString("TEMP_DIR")
}

func AssetsBucket() string {
	return v.GetString("S3_ASSETS_BUCKET")
}

func QRURLTTL() time.Duration {
	return v.GetDuration("QR_URL_TTL")
}

func StatsCacheTTL() time.Duration {
	return v.GetDuration("STATS_CACHE_TTL")
}

func SignInLimit() (attempts int, window time.Duration) {
	return v.GetInt("SIGNIN_MAX_ATTEMPTS"), v.GetDuration("SIGNIN_WINDOW")
}

func EventCompleteAfter() time.Duration {
	return v.GetDuration("EVENT_COMPLETE_AFTER")
}

func HousekeepingInterval() time.Duration {
	return v.GetDuration("HOUSEKEEPING_INTERVAL")
}

func FlyerMaxBytes() int64 {
	return v.GetInt64("FLYER_MAX_BYTES")
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func SMTP() SMTPSettings {
	return SMTPSettings{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("MAIL_FROM"),
		FromName: v.GetString("MAIL_FROM_NAME"),
	}
}

func AdminSeed() (email string, password string) {
	return v.GetString("ADMIN_EMAIL"), v.GetString("ADMIN_PASSWORD")
}

func IsProd() bool {
	return APIEnv() == "production"
}
