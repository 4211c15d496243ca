package configs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// =======================
// CONFIG
// =======================

// Config is parsed once at startup and handed to every constructor that
// needs it. Optional keys carry their default in envDefault.
type Config struct {
	// Server
	Port           string        `env:"PORT" envDefault:"3000"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	Timezone       string        `env:"TIMEZONE" envDefault:"Africa/Nairobi"`

	// Database (DATABASE_URL wins when set)
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName      string `env:"DB_NAME" envDefault:"kanisa"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxOpen   int    `env:"DB_MAX_OPEN" envDefault:"20"`
	DBMaxIdle   int    `env:"DB_MAX_IDLE" envDefault:"10"`
	DBLogLevel  string `env:"DB_LOG_LEVEL" envDefault:"warn"`

	// Auth
	JWTSecret             string        `env:"JWT_SECRET"`
	JWTTTL                time.Duration `env:"JWT_TTL" envDefault:"12h"`
	TokenBlacklistTTLDays int           `env:"TOKEN_BLACKLIST_TTL_DAYS" envDefault:"7"`

	// Attendance / QR
	SiteURL             string        `env:"SITE_URL" envDefault:"http://localhost:3000"`
	QRDefaultValidity   time.Duration `env:"QR_DEFAULT_VALIDITY" envDefault:"4h"`
	QRExtendDefault     time.Duration `env:"QR_EXTEND_DEFAULT" envDefault:"2h"`
	QRCloseCron         string        `env:"QR_CLOSE_CRON" envDefault:"*/15 * * * *"`
	MigrationGroupDelay time.Duration `env:"MIGRATION_GROUP_DELAY" envDefault:"200ms"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console, json

	// Redis (optional; empty addr = in-process lock)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"kanisa"`

	// Completion API
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	// Payment gateway
	MidtransServerKey string `env:"MIDTRANS_SERVER_KEY"`
	MidtransUseProd   bool   `env:"MIDTRANS_USE_PROD" envDefault:"false"`

	// Object storage
	OSSEndpoint   string `env:"ALI_OSS_ENDPOINT"`
	OSSAccessKey  string `env:"ALI_OSS_ACCESS_KEY"`
	OSSSecretKey  string `env:"ALI_OSS_SECRET_KEY"`
	OSSBucket     string `env:"ALI_OSS_BUCKET"`
	OSSPublicBase string `env:"ALI_OSS_PUBLIC_BASE"`

	// Church
	ChurchName      string `env:"CHURCH_NAME" envDefault:"Our Church"`
	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"TZS"`
	SnowflakeNode   int64  `env:"SNOWFLAKE_NODE" envDefault:"1"`
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env (outside hosted environments) and parses Config.
func LoadEnv() (*Config, error) {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system environment")
		} else {
			log.Println("✅ .env loaded")
		}
	} else {
		log.Println("🚀 Running on Railway, using system environment")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.QRDefaultValidity <= 0 {
		return fmt.Errorf("QR_DEFAULT_VALIDITY must be positive")
	}
	if c.QRExtendDefault <= 0 {
		return fmt.Errorf("QR_EXTEND_DEFAULT must be positive")
	}
	if c.MigrationGroupDelay < 0 {
		return fmt.Errorf("MIGRATION_GROUP_DELAY must not be negative")
	}
	if c.JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set, admin login will fail")
	}
	if c.OpenAIAPIKey == "" {
		log.Println("⚠️ OPENAI_API_KEY is not set, report insights are disabled")
	}
	return nil
}

// DSN builds the postgres connection string with a statement timeout.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=UTC&application_name=kanisa&options=-c statement_timeout=15000",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool  { return c.Environment == "production" }
func (c *Config) IsDevelopment() bool { return c.Environment == "development" }

// Location falls back to UTC when TIMEZONE is unknown.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// Default returns a Config populated only from envDefault tags. Used by tests
// and the CLI when no environment is present.
func Default() *Config {
	cfg := &Config{}
	_ = env.Parse(cfg, env.Options{Environment: map[string]string{}})
	return cfg
}
