package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	CORSOrigins             []string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	IdentityCacheTTL        time.Duration
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	JWTSecret               string
	SessionTTL              time.Duration
	PostsPerDay             int
	ProjectsPerDay          int
	Location                *time.Location
	NotificationRetention   time.Duration
	SMTP                    SMTPConfig
}

type SMTPConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Sender       string
	ContactInbox string
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "*")),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DB", "yopdevs"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		IdentityCacheTTL:        getEnvDuration("IDENTITY_CACHE_TTL", 10*time.Minute),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		SessionTTL:              getEnvDuration("SESSION_TTL", 72*time.Hour),
		PostsPerDay:             getEnvInt("POSTS_PER_DAY", 5),
		ProjectsPerDay:          getEnvInt("PROJECTS_PER_DAY", 3),
		Location:                loc,
		NotificationRetention:   time.Duration(getEnvInt("NOTIFICATION_RETENTION_DAYS", 30)) * 24 * time.Hour,
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", ""),
			Port:         getEnv("SMTP_PORT", "587"),
			User:         getEnv("SMTP_USER", ""),
			Password:     getEnv("SMTP_PASSWORD", ""),
			Sender:       getEnv("SMTP_SENDER", ""),
			ContactInbox: getEnv("CONTACT_INBOX", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.PostgresConnStr == "" {
		return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI environment variable not set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.PostsPerDay < 1 || c.ProjectsPerDay < 1 {
		return fmt.Errorf("daily quotas must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
