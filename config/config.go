package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"biteclub/models"
)

// Local mirror backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Search providers.
const (
	ProviderGemini  = "gemini"
	ProviderBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
// The remote store settings are not here: they are runtime state kept in the
// local mirror.
type Config struct {
	DataDir      string
	LocalBackend string
	SQLitePath   string

	HTTPAddr    string
	CORSOrigins []string

	SearchProvider  string
	GeminiAPIKey    string
	GeminiEndpoint  string
	GeminiModel     string
	SearchLatitude  string
	SearchLongitude string
	SearchTimeoutMs int
	MaxRetries      int
	ChromeBin       string

	MaxConcurrency int
	RateLimitMs    int

	ExportPath string
	LogLevel   string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		DataDir:      getEnv("DATA_DIR", "./data"),
		LocalBackend: strings.ToLower(getEnv("LOCAL_BACKEND", BackendFile)),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/biteclub.db"),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		SearchProvider:  strings.ToLower(getEnv("SEARCH_PROVIDER", ProviderGemini)),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiEndpoint:  getEnv("GEMINI_ENDPOINT", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", ""),
		SearchLatitude:  getEnv("SEARCH_LATITUDE", ""),
		SearchLongitude: getEnv("SEARCH_LONGITUDE", ""),
		SearchTimeoutMs: getEnvInt("SEARCH_TIMEOUT_MS", 20000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 2),
		ChromeBin:       getEnv("CHROME_BIN", ""),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),

		ExportPath: getEnv("EXPORT_PATH", "./output/dashboard.csv"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
}

// Location returns the configured search location, or nil when either
// coordinate is missing or malformed.
func (c *Config) Location() *models.Coordinates {
	if c.SearchLatitude == "" || c.SearchLongitude == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(c.SearchLatitude, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil
	}
	lng, err := strconv.ParseFloat(c.SearchLongitude, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil
	}
	return &models.Coordinates{Latitude: lat, Longitude: lng}
}

// SearchTimeout is the per-search deadline.
func (c *Config) SearchTimeout() time.Duration {
	if c.SearchTimeoutMs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.SearchTimeoutMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
