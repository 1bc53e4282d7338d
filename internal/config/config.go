package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port          string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string
	JWTSecret   string
	SessionTTL  int // hours

	MongoURI string
	MongoDB  string

	CatalogPath string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("PORT", "8083")
	return &Config{
		Port:          port,
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SessionTTL:  getEnvInt("SESSION_TTL_HOURS", 72),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "austin_luxury_living"),

		CatalogPath: os.Getenv("CATALOG_PATH"),
	}
}

// Warnings lists settings whose absence will make requests fail later.
// Missing values never stop the server from starting.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseURL == "" {
		out = append(out, "DATABASE_URL is not set; listing and lead requests will fail")
	}
	if c.JWTSecret == "" {
		out = append(out, "JWT_SECRET is not set; sign-in and admin requests will fail")
	}
	if c.MongoURI == "" {
		out = append(out, "MONGO_URI is not set; image uploads will fail")
	}
	return out
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
