package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName   string
	AppEnv    string
	Addr      string
	APIPrefix string
	LogLevel  string

	DatabaseURL string

	JWTSecret    []byte
	JWTAlgorithm string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers    []string
	KafkaAuditTopic string

	ESURL        string
	ESUser       string
	ESPassword   string
	ESAuditIndex string

	MaxFailedLogins    int
	LoginRatePerMinute int
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppName:   EnvDefault("APP_NAME", "adminpanel"),
		AppEnv:    EnvDefault("APP_ENV", "development"),
		Addr:      EnvDefault("APP_ADDR", ":8000"),
		APIPrefix: strings.TrimRight(EnvDefault("API_PREFIX", "/api/v1"), "/"),
		LogLevel:  EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:    []byte(os.Getenv("JWT_SECRET_KEY")),
		JWTAlgorithm: EnvDefault("JWT_ALGORITHM", "HS256"),
		AccessTTL:    time.Duration(EnvIntDefault("JWT_EXPIRY", 3600)) * time.Second,
		RefreshTTL:   time.Duration(EnvIntDefault("JWT_REFRESH_EXPIRY", 172800)) * time.Second,

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers:    CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaAuditTopic: EnvDefault("KAFKA_AUDIT_TOPIC", "audit_events"),

		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESAuditIndex: EnvDefault("ES_AUDIT_INDEX", "audit-logs"),

		MaxFailedLogins:    EnvIntDefault("MAX_FAILED_LOGINS", 3),
		LoginRatePerMinute: EnvIntDefault("LOGIN_RATE_PER_MINUTE", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, missing("JWT_SECRET_KEY"))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not a supported HMAC algorithm", c.JWTAlgorithm))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_EXPIRY must be positive"))
	}
	if c.MaxFailedLogins <= 0 {
		errs = append(errs, errors.New("MAX_FAILED_LOGINS must be positive"))
	}
	return errors.Join(errs...)
}

// Version is the last element of the API prefix, e.g. "v1" for "/api/v1".
func (c *Config) Version() string {
	parts := strings.Split(c.APIPrefix, "/")
	return parts[len(parts)-1]
}

func missing(envName string) error {
	return fmt.Errorf("missing required env %s", envName)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
