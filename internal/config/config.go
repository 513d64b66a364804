package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"artisanhub/internal/media"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the immutable process configuration.
type Config struct {
	AppPort           string
	LogFormat         string
	LogLevel          string
	StoreDriver       string
	DataDir           string
	DatabaseDSN       string
	JWTSecret         string
	TokenTTL          time.Duration
	RabbitMQURL       string
	RedisAddr         string
	DescriptionTTL    time.Duration
	UploadRoot        string
	MaxUploadBytes    int
	UseGoogleCloud    bool
	GoogleProject     string
	GoogleLocation    string
	GoogleBucket      string
	CredentialsFile   string
	VertexModel       string
	AITimeout         time.Duration
	UploadTimeout     time.Duration
	LowStockThreshold int
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverJSON)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DATABASE_DSN", "data/marketplace.db")
	v.SetDefault("JWT_SECRET", "artisanhub-dev-secret")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("DESCRIPTION_CACHE_TTL", "24h")
	v.SetDefault("UPLOAD_ROOT", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 16*1024*1024)
	v.SetDefault("USE_GOOGLE_CLOUD", false)
	v.SetDefault("GOOGLE_CLOUD_PROJECT", "artisanhub-demo")
	v.SetDefault("GOOGLE_CLOUD_LOCATION", "us-central1")
	v.SetDefault("GOOGLE_CLOUD_BUCKET", "artisanhub-uploads")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("VERTEX_MODEL", "gemini-1.5-flash")
	v.SetDefault("AI_TIMEOUT", "15s")
	v.SetDefault("UPLOAD_TIMEOUT", "30s")
	v.SetDefault("LOW_STOCK_THRESHOLD", 5)
}

// LoadDotEnv reads .env files into the process environment. Missing files are ignored;
// variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from v. A nil v uses a fresh viper bound to the environment.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:           v.GetString("APP_PORT"),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		DataDir:           v.GetString("DATA_DIR"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		DescriptionTTL:    v.GetDuration("DESCRIPTION_CACHE_TTL"),
		UploadRoot:        v.GetString("UPLOAD_ROOT"),
		MaxUploadBytes:    v.GetInt("MAX_UPLOAD_BYTES"),
		UseGoogleCloud:    v.GetBool("USE_GOOGLE_CLOUD"),
		GoogleProject:     v.GetString("GOOGLE_CLOUD_PROJECT"),
		GoogleLocation:    v.GetString("GOOGLE_CLOUD_LOCATION"),
		GoogleBucket:      v.GetString("GOOGLE_CLOUD_BUCKET"),
		CredentialsFile:   v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		VertexModel:       v.GetString("VERTEX_MODEL"),
		AITimeout:         v.GetDuration("AI_TIMEOUT"),
		UploadTimeout:     v.GetDuration("UPLOAD_TIMEOUT"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
	}
	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverJSON, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver != DriverJSON && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %s", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.UseGoogleCloud && c.GoogleBucket == "" {
		return errors.New("GOOGLE_CLOUD_BUCKET is required when USE_GOOGLE_CLOUD is set")
	}
	return nil
}

// Media projects the settings the media service needs.
func (c Config) Media() media.Config {
	return media.Config{
		UseCloud:        c.UseGoogleCloud,
		Project:         c.GoogleProject,
		Location:        c.GoogleLocation,
		Bucket:          c.GoogleBucket,
		Model:           c.VertexModel,
		CredentialsFile: c.CredentialsFile,
		UploadRoot:      c.UploadRoot,
		AITimeout:       c.AITimeout,
		UploadTimeout:   c.UploadTimeout,
	}
}
