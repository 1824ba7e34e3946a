package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Cognito   CognitoConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the profile store. Driver is one of postgres, sqlite or mongo.
type DatabaseConfig struct {
	Driver      string
	URL         string
	Timeout     time.Duration
	AutoMigrate bool
	Debug       bool
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CognitoConfig describes the user pool and app client used for sign-in and token verification.
type CognitoConfig struct {
	Region        string
	UserPoolID    string
	ClientID      string
	ClientSecret  string
	Issuer        string
	JWKSURI       string
	Endpoint      string
	Verifier      string
	AllowInsecure bool
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type LogConfig struct {
	Level string
	Dev   bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// LoadConfig loads configuration from environment variables and .env file
// and validates it.
func LoadConfig() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration without validating it. Tools that only need
// a subset of the settings use it directly.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_TIMEOUT", 10)
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("MONGODB_DATABASE", "accounts")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AUTH_VERIFIER", "jwks")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("LOG_LEVEL", "info")

	dbTimeout := time.Duration(v.GetInt("DATABASE_TIMEOUT")) * time.Second

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
			URL:         v.GetString("DATABASE_URL"),
			Timeout:     dbTimeout,
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
			Debug:       v.GetBool("DATABASE_DEBUG"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  dbTimeout,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cognito: CognitoConfig{
			Region:        v.GetString("AWS_REGION"),
			UserPoolID:    v.GetString("COGNITO_USER_POOL_ID"),
			ClientID:      v.GetString("COGNITO_CLIENT_ID"),
			ClientSecret:  os.Getenv("COGNITO_CLIENT_SECRET"),
			Issuer:        v.GetString("COGNITO_ISSUER"),
			JWKSURI:       v.GetString("COGNITO_JWKS_URI"),
			Endpoint:      v.GetString("COGNITO_ENDPOINT"),
			Verifier:      strings.ToLower(v.GetString("AUTH_VERIFIER")),
			AllowInsecure: strings.EqualFold(strings.TrimSpace(v.GetString("ALLOW_INSECURE_TOKEN")), "true"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dev:   v.GetString("LOG_DEV") == "1" || v.GetBool("LOG_DEV"),
		},
	}

	if cfg.Cognito.Issuer == "" && cfg.Cognito.UserPoolID != "" {
		cfg.Cognito.Issuer = fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", cfg.Cognito.Region, cfg.Cognito.UserPoolID)
	}
	if cfg.Cognito.JWKSURI == "" && cfg.Cognito.Issuer != "" {
		cfg.Cognito.JWKSURI = strings.TrimRight(cfg.Cognito.Issuer, "/") + "/.well-known/jwks.json"
	}
	return cfg
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Cognito.Region == "" {
		errs = append(errs, errors.New("AWS_REGION is required"))
	}
	if c.Cognito.UserPoolID == "" {
		errs = append(errs, errors.New("COGNITO_USER_POOL_ID is required"))
	}
	if c.Cognito.ClientID == "" {
		errs = append(errs, errors.New("COGNITO_CLIENT_ID is required"))
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	case DriverMongo:
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver))
	}
	switch c.Cognito.Verifier {
	case "jwks", "discovery":
	default:
		errs = append(errs, fmt.Errorf("unsupported AUTH_VERIFIER %q", c.Cognito.Verifier))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}
