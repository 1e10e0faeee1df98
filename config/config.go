package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	DatabaseURL string
	ServerPort  int
	CORSOrigins []string

	// S3-compatible media storage; optional. When unset the logo upload
	// endpoints are disabled.
	MediaEndpoint        string
	MediaAccessKeyID     string
	MediaSecretAccessKey string
	MediaBucketName      string
	MediaPublicBaseURL   string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		ServerPort:           port,
		CORSOrigins:          origins,
		MediaEndpoint:        os.Getenv("MEDIA_S3_ENDPOINT"),
		MediaAccessKeyID:     os.Getenv("MEDIA_S3_ACCESS_KEY_ID"),
		MediaSecretAccessKey: os.Getenv("MEDIA_S3_SECRET_ACCESS_KEY"),
		MediaBucketName:      os.Getenv("MEDIA_S3_BUCKET"),
		MediaPublicBaseURL:   os.Getenv("MEDIA_PUBLIC_BASE_URL"),
	}
	return cfg, nil
}

// MediaConfigured reports whether every media storage variable is present.
func (c *Config) MediaConfigured() bool {
	return c.MediaEndpoint != "" &&
		c.MediaAccessKeyID != "" &&
		c.MediaSecretAccessKey != "" &&
		c.MediaBucketName != "" &&
		c.MediaPublicBaseURL != ""
}
