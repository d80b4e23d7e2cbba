package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	DatabaseURL    string        `yaml:"database_url"`
	RunMigrations  bool          `yaml:"run_migrations"`
	SecretKey      string        `yaml:"jwt_secret_key"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	AMQPURL        string        `yaml:"amqp_url"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	Twilio         TwilioConfig  `yaml:"twilio"`
	Cloudinary     CloudConfig   `yaml:"cloudinary"`
}

type TwilioConfig struct {
	AccountSID       string `yaml:"account_sid"`
	AuthToken        string `yaml:"auth_token"`
	VerifyServiceSID string `yaml:"verify_service_sid"`
}

type CloudConfig struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
}

func defaults() Config {
	return Config{
		Port:          ":8080",
		RunMigrations: true,
		TokenTTL:      time.Hour,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// Load reads .env (if present), then the optional YAML file named by CONFIG_FILE,
// then lets environment variables override both.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var result error

	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.SecretKey, "JWT_SECRET_KEY")
	setString(&cfg.AMQPURL, "AMQP_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Twilio.VerifyServiceSID, "TWILIO_VERIFY_SERVICE_SID")
	setString(&cfg.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&cfg.Cloudinary.UploadPreset, "CLOUDINARY_UPLOAD_PRESET")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("RUN_MIGRATIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("RUN_MIGRATIONS: %w", err))
		} else {
			cfg.RunMigrations = b
		}
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("TOKEN_TTL: %w", err))
		} else {
			cfg.TokenTTL = d
		}
	}
	if cfg.Port != "" && !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	return result
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var result error
	if c.DatabaseURL == "" {
		result = multierror.Append(result, errors.New("DATABASE_URL is required"))
	}
	if c.SecretKey == "" {
		result = multierror.Append(result, errors.New("JWT secret key not set"))
	}
	if c.TokenTTL <= 0 {
		result = multierror.Append(result, errors.New("TOKEN_TTL must be positive"))
	}
	return result
}

// SMSEnabled reports whether phone verification credentials are configured.
func (c *Config) SMSEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.VerifyServiceSID != ""
}

func (c *Config) ImageUploadsEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.UploadPreset != ""
}
