package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	Env           string
	HTTPPort      string
	Secret        string
	DatabasePath  string
	CORSOrigins   []string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SeedFile      string
}

// Load reads configuration from environment variables with reasonable
// defaults. It fails instead of falling back when the deployment is
// marked production and no JWT secret is configured.
func Load() (Config, error) {
	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		HTTPPort:      getenv("HTTP_PORT", "8080"),
		Secret:        os.Getenv("SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SeedFile:      os.Getenv("SEED_INVENTORY_CSV"),
	}

	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_PORT value %q", cfg.HTTPPort)
	}

	if cfg.Secret == "" {
		if cfg.Env == "production" {
			return Config{}, errors.New("SECRET must be set in production")
		}
		cfg.Secret = "dev_secret"
	}

	dbPath, err := ResolveDatabasePath(os.Getenv("DATABASE_PATH"), getenv("DATA_DIR", "data"))
	if err != nil {
		return Config{}, err
	}
	cfg.DatabasePath = dbPath

	cfg.CORSOrigins = ParseCORSOrigins(os.Getenv("CORS_ORIGINS"))

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB value %q", raw)
		}
		cfg.RedisDB = n
	}

	return cfg, nil
}

// ResolveDatabasePath turns the DATABASE_PATH setting into a SQLite
// file path. Relative paths resolve under dataDir, which is created if
// missing. An empty setting defaults to clinic.db.
func ResolveDatabasePath(raw, dataDir string) (string, error) {
	if raw == "" {
		raw = "clinic.db"
	}
	if raw == ":memory:" {
		return raw, nil
	}
	if !filepath.IsAbs(raw) {
		raw = filepath.Join(dataDir, raw)
	}
	if err := os.MkdirAll(filepath.Dir(raw), 0o755); err != nil {
		return "", fmt.Errorf("unable to create database directory: %w", err)
	}
	return raw, nil
}

// ParseCORSOrigins splits a comma-separated origin list, trimming
// whitespace and dropping empty entries. An empty setting allows all
// origins, which suits development only.
func ParseCORSOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"*"}
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
