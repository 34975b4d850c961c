package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	JWT     JWTConfig
	HRAPI   HRAPIConfig
	Storage StorageConfig
	Audit   AuditConfig
	Views   ViewsConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	LogFile     string
	FrontendURL string
}

// JWTConfig holds the secret used to verify caller access tokens
type JWTConfig struct {
	Secret string
}

// HRAPIConfig describes the upstream HR REST API
type HRAPIConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string

	// OAuth2 client credentials; used instead of Token when ClientID is set
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// UsesClientCredentials reports whether the upstream should be called with an OAuth2 client.
func (c HRAPIConfig) UsesClientCredentials() bool {
	return c.ClientID != ""
}

// StorageConfig selects where exported artifacts are archived
type StorageConfig struct {
	Type     string // "none", "local", "s3"
	BasePath string
	BaseURL  string
	Bucket   string
	Prefix   string
}

type AuditConfig struct {
	DatabaseURL string
}

func (c AuditConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

type ViewsConfig struct {
	IdleTTL          time.Duration
	SweepInterval    time.Duration
	RoleProfilesFile string
}

func Load() (*Config, error) {
	config, err := parse()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadUpstream loads configuration for tools that only call the HR API.
func LoadUpstream() (*Config, error) {
	config, err := parse()
	if err != nil {
		return nil, err
	}

	if err := config.ValidateUpstream(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// HR API configuration
	timeout, err := time.ParseDuration(getEnv("HR_API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HR_API_TIMEOUT: %w", err)
	}

	config.HRAPI = HRAPIConfig{
		BaseURL:      strings.TrimRight(getEnv("HR_API_BASE_URL", ""), "/"),
		Timeout:      timeout,
		Token:        getEnv("HR_API_TOKEN", ""),
		ClientID:     getEnv("HR_API_CLIENT_ID", ""),
		ClientSecret: getEnv("HR_API_CLIENT_SECRET", ""),
		TokenURL:     getEnv("HR_API_TOKEN_URL", ""),
		Scopes:       getEnvSlice("HR_API_SCOPES"),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "none"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./exports"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/exports"),
		Bucket:   getEnv("STORAGE_S3_BUCKET", ""),
		Prefix:   getEnv("STORAGE_S3_PREFIX", "exports"),
	}

	config.Audit = AuditConfig{
		DatabaseURL: getEnv("AUDIT_DATABASE_URL", ""),
	}

	// View lifecycle configuration
	idleTTL, err := time.ParseDuration(getEnv("VIEW_IDLE_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_IDLE_TTL: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("VIEW_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_SWEEP_INTERVAL: %w", err)
	}

	config.Views = ViewsConfig{
		IdleTTL:          idleTTL,
		SweepInterval:    sweepInterval,
		RoleProfilesFile: getEnv("ROLE_PROFILES_FILE", ""),
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.ValidateUpstream()
}

// ValidateUpstream validates only what is needed to talk to the HR API.
func (c *Config) ValidateUpstream() error {
	if c.HRAPI.BaseURL == "" {
		return fmt.Errorf("HR_API_BASE_URL is required")
	}
	if c.HRAPI.UsesClientCredentials() {
		if c.HRAPI.ClientSecret == "" {
			return fmt.Errorf("HR_API_CLIENT_SECRET is required when HR_API_CLIENT_ID is set")
		}
		if c.HRAPI.TokenURL == "" {
			return fmt.Errorf("HR_API_TOKEN_URL is required when HR_API_CLIENT_ID is set")
		}
	}

	switch c.Storage.Type {
	case "none", "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}

	if c.Views.IdleTTL <= 0 {
		return fmt.Errorf("VIEW_IDLE_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
