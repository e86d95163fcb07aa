// Package config loads service settings from the environment (and an
// optional .env file) into a typed, validated struct.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable read by Parse.
const Prefix = "BOOKS"

type Config struct {
	Env       string          `envconfig:"ENV" default:"development" validate:"oneof=development staging production"`
	Server    ServerConfig    `envconfig:"SERVER"`
	DB        DBConfig        `envconfig:"DB"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Log       LogConfig       `envconfig:"LOG"`
	CORS      CORSConfig      `envconfig:"CORS"`
	S3        S3Config        `envconfig:"S3"`
}

type ServerConfig struct {
	Addr            string        `envconfig:"ADDR" default:":3000" validate:"required"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576" validate:"gt=0"`
	TLSCert         string        `envconfig:"TLS_CERT" validate:"required_with=TLSKey"`
	TLSKey          string        `envconfig:"TLS_KEY" validate:"required_with=TLSCert"`
}

func (s ServerConfig) TLS() bool { return s.TLSCert != "" && s.TLSKey != "" }

// DBConfig holds the primary (write) and optional replica (read) DSNs.
type DBConfig struct {
	WriteURL        string        `envconfig:"WRITE_URL" validate:"required"`
	ReadURL         string        `envconfig:"READ_URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10" validate:"gt=0"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10" validate:"gte=0"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
	PingTimeout     time.Duration `envconfig:"PING_TIMEOUT" default:"3s" validate:"gt=0"`
}

// RedisConfig is optional; an empty URL disables Redis-backed features.
type RedisConfig struct {
	URL string `envconfig:"URL" validate:"omitempty,url"`
}

type RateLimitConfig struct {
	Enabled bool    `envconfig:"ENABLED" default:"true"`
	RPS     float64 `envconfig:"RPS" default:"20" validate:"gt=0"`
	Burst   int     `envconfig:"BURST" default:"40" validate:"gt=0"`
	Prefix  string  `envconfig:"PREFIX" default:"rl:books"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}

// S3Config points at any S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Endpoint        string        `envconfig:"ENDPOINT" validate:"omitempty,url"`
	Region          string        `envconfig:"REGION" default:"auto"`
	Bucket          string        `envconfig:"BUCKET"`
	AccessKeyID     string        `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string        `envconfig:"SECRET_ACCESS_KEY"`
	Prefix          string        `envconfig:"PREFIX" default:"snapshots/"`
	PresignTTL      time.Duration `envconfig:"PRESIGN_TTL" default:"15m" validate:"gt=0"`
	Keep            int           `envconfig:"KEEP" default:"0" validate:"gte=0"`
	Schedule        string        `envconfig:"SCHEDULE"`
	Timezone        string        `envconfig:"TIMEZONE" default:"UTC"`
	UsePathStyle    bool          `envconfig:"USE_PATH_STYLE"`
}

var ErrS3NotConfigured = errors.New("config: BOOKS_S3_BUCKET is not set")

// Ready reports whether a snapshot upload can be attempted.
func (s S3Config) Ready() error {
	if s.Bucket == "" {
		return ErrS3NotConfigured
	}
	if (s.AccessKeyID == "") != (s.SecretAccessKey == "") {
		return errors.New("config: BOOKS_S3_ACCESS_KEY_ID and BOOKS_S3_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}

// Load reads .env from the working directory when present, then Parse.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return Parse()
}

// Parse reads BOOKS_* variables, applies defaults and validates the result.
func Parse() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.DB.ReadURL == "" {
		cfg.DB.ReadURL = cfg.DB.WriteURL
	}
	return &cfg, nil
}

func (c *Config) Production() bool { return c.Env == "production" }

// HardeningWarnings lists settings that work but should not ship to
// production as they are. Nothing here stops startup.
func (c *Config) HardeningWarnings() []string {
	var warns []string
	for _, o := range c.CORS.AllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			warns = append(warns, "BOOKS_CORS_ALLOWED_ORIGINS contains *; list origins explicitly")
			break
		}
	}
	if !c.Production() {
		return warns
	}
	if !c.Server.TLS() {
		warns = append(warns, "BOOKS_SERVER_TLS_CERT/KEY not set; terminate TLS in front of the service")
	}
	if strings.HasPrefix(c.Redis.URL, "redis://") {
		warns = append(warns, "BOOKS_REDIS_URL uses redis:// (no TLS). Prefer rediss://")
	}
	if !c.RateLimit.Enabled {
		warns = append(warns, "rate limiting is disabled")
	}
	dsns := []struct{ name, dsn string }{
		{"BOOKS_DB_WRITE_URL", c.DB.WriteURL},
		{"BOOKS_DB_READ_URL", c.DB.ReadURL},
	}
	for _, d := range dsns {
		if u, err := url.Parse(d.dsn); err == nil && u.Query().Get("sslmode") == "disable" {
			warns = append(warns, d.name+" has sslmode=disable")
		}
	}
	return warns
}
