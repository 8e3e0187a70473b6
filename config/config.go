package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL      string
	Port             string
	AllowedOrigins   string
	AdminToken       string
	SnapshotInterval time.Duration
	R2               R2Config
}

// R2Config holds the Cloudflare R2 (S3-compatible) bucket used for
// standings snapshots. Snapshots are disabled when Bucket is empty.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

func (r R2Config) Enabled() bool {
	return r.Bucket != ""
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5200"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	interval := 5 * time.Minute
	if raw := os.Getenv("SNAPSHOT_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL %q: %w", raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SNAPSHOT_INTERVAL must be positive, got %s", d)
		}
		interval = d
	}

	r2 := R2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		Bucket:          os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
	}
	if r2.Enabled() && r2.AccountID == "" {
		return nil, fmt.Errorf("R2_ACCOUNT_ID is required when R2_BUCKET_NAME is set")
	}
	if r2.CDNBaseURL == "" && r2.AccountID != "" {
		r2.CDNBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", r2.AccountID, r2.Bucket)
	}

	return &Config{
		DatabaseURL:      dsn,
		Port:             port,
		AllowedOrigins:   strings.Join(origins, ","),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		SnapshotInterval: interval,
		R2:               r2,
	}, nil
}
