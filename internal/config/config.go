package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"
)

// Realtime drivers
const (
	RealtimeDriverLocal    = "local"
	RealtimeDriverPostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		LoginRateLimit int      `yaml:"login_rate_limit" env:"SERVER_LOGIN_RATE_LIMIT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver         string        `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath      string        `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		PublicBaseURL  string        `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
		CloudinaryURL  string        `yaml:"cloudinary_url" env:"STORAGE_CLOUDINARY_URL"`
		ImagePreset    string        `yaml:"image_preset" env:"STORAGE_IMAGE_PRESET"`
		DocumentPreset string        `yaml:"document_preset" env:"STORAGE_DOCUMENT_PRESET"`
		ImageFolder    string        `yaml:"image_folder" env:"STORAGE_IMAGE_FOLDER"`
		DocumentFolder string        `yaml:"document_folder" env:"STORAGE_DOCUMENT_FOLDER"`
		UploadTimeout  time.Duration `yaml:"upload_timeout" env:"STORAGE_UPLOAD_TIMEOUT"`
	} `yaml:"storage"`

	Imaging struct {
		MaxWidth    int `yaml:"max_width" env:"IMAGING_MAX_WIDTH"`
		JPEGQuality int `yaml:"jpeg_quality" env:"IMAGING_JPEG_QUALITY"`
	} `yaml:"imaging"`

	Consultation struct {
		Timezone      string        `yaml:"timezone" env:"CONSULTATION_TIMEZONE"`
		InPersonGrace time.Duration `yaml:"in_person_grace" env:"CONSULTATION_IN_PERSON_GRACE"`
	} `yaml:"consultation"`

	Realtime struct {
		Driver  string `yaml:"driver" env:"REALTIME_DRIVER"`
		Channel string `yaml:"channel" env:"REALTIME_CHANNEL"`
	} `yaml:"realtime"`

	Chat struct {
		InboxScanWarnThreshold int `yaml:"inbox_scan_warn_threshold" env:"CHAT_INBOX_SCAN_WARN_THRESHOLD"`
	} `yaml:"chat"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory is applied to the process environment first.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.LoginRateLimit = 5

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "unilink"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "unilink.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = StorageDriverLocal
	config.Storage.LocalPath = "uploads"
	config.Storage.ImagePreset = "unilink"
	config.Storage.DocumentPreset = "unilink-docs"
	config.Storage.ImageFolder = "images/profile-images"
	config.Storage.DocumentFolder = "docs/pdfs"
	config.Storage.UploadTimeout = 30 * time.Second

	config.Imaging.MaxWidth = 800
	config.Imaging.JPEGQuality = 50

	config.Consultation.Timezone = "Asia/Colombo"
	config.Consultation.InPersonGrace = time.Minute

	config.Realtime.Driver = RealtimeDriverLocal
	config.Realtime.Channel = "unilink_changes"

	config.Chat.InboxScanWarnThreshold = 5000
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection lifetime format: %w", err)
	}

	switch config.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverCloudinary:
		if config.Storage.CloudinaryURL == "" {
			return fmt.Errorf("cloudinary url is required for the cloudinary storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.Realtime.Driver {
	case RealtimeDriverLocal, RealtimeDriverPostgres:
	default:
		return fmt.Errorf("unknown realtime driver %q", config.Realtime.Driver)
	}

	if config.Imaging.MaxWidth <= 0 {
		return fmt.Errorf("imaging max width must be positive")
	}

	if config.Imaging.JPEGQuality < 1 || config.Imaging.JPEGQuality > 100 {
		return fmt.Errorf("imaging jpeg quality must be between 1 and 100")
	}

	if _, err := time.LoadLocation(config.Consultation.Timezone); err != nil {
		return fmt.Errorf("invalid consultation timezone: %w", err)
	}

	return nil
}

// Location returns the time zone used for calendar-day comparisons
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Consultation.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
