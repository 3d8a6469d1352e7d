package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	JWTExpire   time.Duration
	ServerPort  string
	ServerHost  string
	Environment string

	RedisURL               string
	RateLimitEnabled       bool
	RateLimitIPAttempts    int
	RateLimitIPWindow      time.Duration
	RateLimitUserAttempts  int
	RateLimitUserWindow    time.Duration
	RateLimitBlockDuration time.Duration
	RateLimitAPIRequests   int
	RateLimitAPIWindow     time.Duration

	LogLevel               string
	LogFormat              string
	LogCorrelationIDHeader string
	LogEnableRequestLog    bool

	// CORS configuration
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Audit configuration
	AuditStore    string
	AuditLogReads bool
	MongoURI      string
	MongoDatabase string

	// Google Drive configuration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleRefreshToken string
	DriveFolderTasks   string
	DriveFolderEvents  string
	DriveFolderRemarks string
	UploadMaxFiles     int
	UploadMaxBytes     int64
}

const (
	AuditStorePostgres = "postgres"
	AuditStoreMongo    = "mongo"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
	ErrInvalidAuditStore  = errors.New("AUDIT_STORE must be postgres or mongo")
	ErrMissingMongoURI    = errors.New("MONGO_URI is required when AUDIT_STORE=mongo")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		JWTExpire:              getEnvOrDefaultDuration("JWT_EXPIRE", 96*time.Hour),
		ServerPort:             getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:             getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment:            getEnvOrDefault("ENV", "development"),
		RedisURL:               getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:       getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitIPAttempts:    getEnvOrDefaultInt("RATE_LIMIT_IP_ATTEMPTS", 5),
		RateLimitIPWindow:      getEnvOrDefaultDuration("RATE_LIMIT_IP_WINDOW", 15*time.Minute),
		RateLimitUserAttempts:  getEnvOrDefaultInt("RATE_LIMIT_USER_ATTEMPTS", 10),
		RateLimitUserWindow:    getEnvOrDefaultDuration("RATE_LIMIT_USER_WINDOW", time.Hour),
		RateLimitBlockDuration: getEnvOrDefaultDuration("RATE_LIMIT_BLOCK_DURATION", 30*time.Minute),
		RateLimitAPIRequests:   getEnvOrDefaultInt("RATE_LIMIT_API_REQUESTS", 100),
		RateLimitAPIWindow:     getEnvOrDefaultDuration("RATE_LIMIT_API_WINDOW", time.Minute),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		LogCorrelationIDHeader: getEnvOrDefault("LOG_CORRELATION_ID_HEADER", "X-Correlation-ID"),
		LogEnableRequestLog:    getEnvOrDefaultBool("LOG_ENABLE_REQUEST_LOG", true),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		AuditStore:    strings.ToLower(getEnvOrDefault("AUDIT_STORE", AuditStorePostgres)),
		AuditLogReads: getEnvOrDefaultBool("AUDIT_LOG_READS", false),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "taskhub"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnvOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		DriveFolderTasks:   os.Getenv("DRIVE_FOLDER_TASKS"),
		DriveFolderEvents:  os.Getenv("DRIVE_FOLDER_EVENTS"),
		DriveFolderRemarks: os.Getenv("DRIVE_FOLDER_REMARKS"),
		UploadMaxFiles:     getEnvOrDefaultInt("UPLOAD_MAX_FILES", 5),
		UploadMaxBytes:     int64(getEnvOrDefaultInt("UPLOAD_MAX_BYTES", 50*1024*1024)),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	switch cfg.AuditStore {
	case AuditStorePostgres:
	case AuditStoreMongo:
		if cfg.MongoURI == "" {
			return nil, ErrMissingMongoURI
		}
	default:
		return nil, ErrInvalidAuditStore
	}

	return cfg, nil
}

// DriveConfigured reports whether enough OAuth material exists to talk to Drive.
func (c *Config) DriveConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRefreshToken != ""
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvOrDefaultDuration accepts plain seconds, Go durations, or a day suffix ("4d").
func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	if strings.HasSuffix(value, "d") {
		if n, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
