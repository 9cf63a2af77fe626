// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Image hosts.
const (
	HostCloudinary = "cloudinary"
	HostLocal      = "local"
)

// Config holds every setting the process reads.
type Config struct {
	Port        string
	FrontendURL string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseDSN   string

	ImageHost           string
	ImageFolder         string
	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	UploadDir           string
	PublicBaseURL       string

	RabbitMQURL      string
	RabbitMQExchange string

	APIBaseURL  string
	WebPageSize int

	LogLevel  string
	LogFormat string

	// EnvFileErr is why .env was not loaded, nil when it was. It is kept
	// for main to log once logging is configured.
	EnvFileErr error
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	envFileErr := godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "katalog")
	v.SetDefault("DATABASE_DSN", "katalog.db")
	v.SetDefault("IMAGE_HOST", HostLocal)
	v.SetDefault("IMAGE_FOLDER", "products")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("WEB_PAGE_SIZE", 3)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()

	port := v.GetString("PORT")
	cfg := &Config{
		Port:                port,
		FrontendURL:         v.GetString("FRONTEND_URL"),
		StoreDriver:         strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:            v.GetString("MONGODB_URI"),
		MongoDatabase:       v.GetString("MONGODB_DATABASE"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		ImageHost:           strings.ToLower(v.GetString("IMAGE_HOST")),
		ImageFolder:         v.GetString("IMAGE_FOLDER"),
		CloudinaryURL:       v.GetString("CLOUDINARY_URL"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		UploadDir:           v.GetString("UPLOAD_DIR"),
		PublicBaseURL:       v.GetString("PUBLIC_BASE_URL"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:    v.GetString("RABBITMQ_EXCHANGE"),
		APIBaseURL:          v.GetString("API_BASE_URL"),
		WebPageSize:         v.GetInt("WEB_PAGE_SIZE"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:           strings.ToLower(v.GetString("LOG_FORMAT")),
		EnvFileErr:          envFileErr,
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + port
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://127.0.0.1:" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreDriver == DriverPostgres && c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set for the postgres driver"))
	}
	switch c.ImageHost {
	case HostLocal:
	case HostCloudinary:
		if c.CloudinaryURL == "" && (c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "") {
			errs = append(errs, errors.New("cloudinary image host needs CLOUDINARY_URL or CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IMAGE_HOST %q", c.ImageHost))
	}
	if c.WebPageSize <= 0 {
		errs = append(errs, fmt.Errorf("WEB_PAGE_SIZE must be positive, got %d", c.WebPageSize))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
