package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverRedis     = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// StorageDriver backs accounts, startups, tracking and notifications.
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	// CatalogDriver backs grants, the soft-approval overlay and coupons.
	CatalogDriver string `mapstructure:"CATALOG_DRIVER"`
	// MatchStore backs per-account match lists.
	MatchStore string `mapstructure:"MATCH_STORE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	OracleProvider      string        `mapstructure:"ORACLE_PROVIDER"`
	OracleAPIKey        string        `mapstructure:"ORACLE_API_KEY"`
	OracleModel         string        `mapstructure:"ORACLE_MODEL"`
	OracleBaseURL       string        `mapstructure:"ORACLE_BASE_URL"`
	OracleTimeout       time.Duration `mapstructure:"ORACLE_TIMEOUT"`
	OracleMaxCandidates int           `mapstructure:"ORACLE_MAX_CANDIDATES"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	ClientURL string `mapstructure:"CLIENT_URL"`
	UploadDir string `mapstructure:"UPLOAD_DIR"`

	TrackingStrictTransitions bool `mapstructure:"TRACKING_STRICT_TRANSITIONS"`

	SeedFile string `mapstructure:"SEED_FILE"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	NotifyQueue string `mapstructure:"NOTIFY_QUEUE"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	MailFrom string `mapstructure:"MAIL_FROM"`
}

var defaults = map[string]interface{}{
	"PORT":                        "8080",
	"GIN_MODE":                    "debug",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"STORAGE_DRIVER":              DriverMemory,
	"CATALOG_DRIVER":              DriverMemory,
	"MATCH_STORE":                 DriverMemory,
	"REDIS_DB":                    0,
	"CATALOG_CACHE_TTL":           "5m",
	"ORACLE_PROVIDER":             "openai",
	"ORACLE_TIMEOUT":              "20s",
	"ORACLE_MAX_CANDIDATES":       12,
	"JWT_TTL":                     "720h",
	"UPLOAD_DIR":                  "uploads",
	"TRACKING_STRICT_TRANSITIONS": false,
	"NOTIFY_QUEUE":                "grantmatch.notifications",
	"SMTP_PORT":                   "2525",
}

var appConfig *Config

// LoadConfig loads configuration from the environment (and an optional .env
// file) using Viper.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envKeys() {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.CatalogDriver = strings.ToLower(strings.TrimSpace(c.CatalogDriver))
	c.MatchStore = strings.ToLower(strings.TrimSpace(c.MatchStore))
	c.OracleProvider = strings.ToLower(strings.TrimSpace(c.OracleProvider))
	if c.OracleMaxCandidates <= 0 {
		c.OracleMaxCandidates = 12
	}
}

// Validate checks driver-dependent requirements.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.StorageDriver {
	case DriverMemory:
	case DriverFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when STORAGE_DRIVER=firestore")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.CatalogDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when CATALOG_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported CATALOG_DRIVER %q", c.CatalogDriver)
	}

	switch c.MatchStore {
	case DriverMemory:
	case DriverFirestore:
		if c.StorageDriver != DriverFirestore {
			return errors.New("MATCH_STORE=firestore requires STORAGE_DRIVER=firestore")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when MATCH_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported MATCH_STORE %q", c.MatchStore)
	}

	switch c.OracleProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported ORACLE_PROVIDER %q", c.OracleProvider)
	}
	return nil
}

func envKeys() []string {
	return []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT",
		"STORAGE_DRIVER", "CATALOG_DRIVER", "MATCH_STORE",
		"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"DATABASE_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CATALOG_CACHE_TTL",
		"ORACLE_PROVIDER", "ORACLE_API_KEY", "ORACLE_MODEL", "ORACLE_BASE_URL", "ORACLE_TIMEOUT", "ORACLE_MAX_CANDIDATES",
		"JWT_SECRET", "JWT_TTL",
		"CLIENT_URL", "UPLOAD_DIR",
		"TRACKING_STRICT_TRANSITIONS",
		"SEED_FILE",
		"RABBITMQ_URL", "NOTIFY_QUEUE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_FROM",
	}
}
