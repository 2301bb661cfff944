/*
Package configs is responsible for loading and parsing the application's configuration settings.

Server parameters come from environment variables, with a .env file loaded
first when present. Production requires the secrets that development defaults.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// DataDir holds the flat JSON documents; PublicDir is served statically.
	DataDir   string
	PublicDir string

	// Security Settings
	AllowedOrigins []string

	// DevKey is the shared secret gating state updates and dev sessions.
	// May be empty; every gate then denies.
	DevKey string

	// SessionSecret signs the dev-session tokens.
	SessionSecret string

	// PriceUpstreamURL overrides the SOL price feed endpoint (tests, mirrors).
	PriceUpstreamURL string

	// S3 Storage Settings (optional; local disk is used when unset)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// LoadConfig reads and parses the application configuration from environment
// variables, providing defaults and validating what must be present.
func LoadConfig() (*AppConfig, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "3000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.PublicDir = os.Getenv("PUBLIC_DIR")
	if cfg.PublicDir == "" {
		cfg.PublicDir = "public"
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// DEV_KEY may legitimately be absent; the verify endpoint reports it.
	cfg.DevKey = os.Getenv("DEV_KEY")

	sessionSecret := os.Getenv("SESSION_SECRET")
	if cfg.Environment == "development" {
		if sessionSecret == "" {
			sessionSecret = "supersecretdevsession"
		}
	} else {
		if sessionSecret == "" {
			return nil, fmt.Errorf("SESSION_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
	}
	cfg.SessionSecret = sessionSecret

	cfg.PriceUpstreamURL = os.Getenv("PRICE_UPSTREAM_URL")

	// --- S3 Storage Settings (optional) ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName != "" {
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required when S3_BUCKET_NAME is set")
		}
	}

	return cfg, nil
}
