package config

import (
	"log/slog"
	"os"
)

const (
	defaultEnv       = "development"
	defaultDBPath    = "./dev.db"
	defaultPort      = "8080"
	defaultUploadDir = "./uploads"
	defaultLogLevel  = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	BaseURL       string
	ChromePath    string
	UploadDir     string
	LogLevel      string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Production injects the environment; the file is only for local runs.
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("could not read .env", "error", err)
	}

	cfg := Config{
		Env:           getenv("APP_ENV", defaultEnv),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        getenv("DB_PATH", defaultDBPath),
		Port:          getenv("PORT", defaultPort),
		ChromePath:    os.Getenv("CHROME_PATH"),
		UploadDir:     getenv("UPLOAD_DIR", defaultUploadDir),
		LogLevel:      getenv("LOG_LEVEL", defaultLogLevel),
	}
	cfg.BaseURL = getenv("BASE_URL", "http://localhost:"+cfg.Port)

	if cfg.AdminEmail == "" {
		slog.Warn("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == defaultEnv || c.Env == "dev"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
