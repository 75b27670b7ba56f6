package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Lllllllleong/bloggerimageuploader/internal/apperr"
)

const (
	BackendDrive = "drive"
	BackendGCS   = "gcs"

	DefaultFolderName  = "WordPress Thumbnails"
	DefaultRedirectURL = "https://developers.google.com/oauthplayground"
	DefaultPort        = "3000"
	DefaultEnvironment = "production"
)

// Config holds every setting the service reads from its environment.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	RedirectURL  string

	StorageBackend string
	FolderName     string
	GCSBucket      string
	BlogID         string

	APIPassword string
	Port        string
	Environment string
	LogLevel    string
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory are loaded first when one exists; values
// already present in the environment are not overridden.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not read .env file, using process environment only.", "error", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		ClientID:       GetEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret:   GetEnv("GOOGLE_CLIENT_SECRET", ""),
		RefreshToken:   GetEnv("GOOGLE_REFRESH_TOKEN", ""),
		RedirectURL:    GetEnv("GOOGLE_REDIRECT_URL", DefaultRedirectURL),
		StorageBackend: strings.ToLower(GetEnv("STORAGE_BACKEND", BackendDrive)),
		FolderName:     GetEnv("DRIVE_FOLDER_NAME", DefaultFolderName),
		GCSBucket:      GetEnv("GCS_BUCKET", ""),
		BlogID:         GetEnv("BLOGGER_BLOG_ID", ""),
		APIPassword:    GetEnv("API_PASSWORD", ""),
		Port:           GetEnv("PORT", DefaultPort),
		Environment:    GetEnv("APP_ENV", DefaultEnvironment),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
	}
}

// NeedsOAuth reports whether any enabled backend authenticates with the
// refresh-token grant.
func (c *Config) NeedsOAuth() bool {
	return c.StorageBackend == BackendDrive || c.BlogID != ""
}

// PasswordRequired reports whether requests must carry the API password.
func (c *Config) PasswordRequired() bool {
	return c.APIPassword != ""
}

// Validate checks that every variable required by the enabled backends is
// set. All missing variables are reported together.
func (c *Config) Validate() error {
	var missing []string
	if c.NeedsOAuth() {
		if c.ClientID == "" {
			missing = append(missing, "GOOGLE_CLIENT_ID")
		}
		if c.ClientSecret == "" {
			missing = append(missing, "GOOGLE_CLIENT_SECRET")
		}
		if c.RefreshToken == "" {
			missing = append(missing, "GOOGLE_REFRESH_TOKEN")
		}
	}

	switch c.StorageBackend {
	case BackendDrive:
	case BackendGCS:
		if c.GCSBucket == "" {
			missing = append(missing, "GCS_BUCKET")
		}
	default:
		return apperr.New(apperr.KindConfig, "config.validate",
			"Unsupported STORAGE_BACKEND: "+c.StorageBackend)
	}

	if len(missing) > 0 {
		return apperr.New(apperr.KindConfig, "config.validate",
			"Missing required environment variables: "+strings.Join(missing, ", "))
	}
	return nil
}

// LogLevel maps a LOG_LEVEL value to a slog level. Unknown values mean info.
func LogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
