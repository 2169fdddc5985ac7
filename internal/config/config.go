package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	HTTPAddr     string
	DBUrl        string
	DBNs         string
	DBDb         string
	DBUser       string
	DBPass       string
	TokenSecret  string
	TokenTTL     time.Duration
	HistoryLimit int
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DBUrl:        os.Getenv("SURREAL_URL"),
		DBUser:       os.Getenv("SURREAL_USER"),
		DBPass:       os.Getenv("SURREAL_PASS"),
		DBNs:         os.Getenv("SURREAL_NS"),
		DBDb:         os.Getenv("SURREAL_DB"),
		TokenSecret:  os.Getenv("TOKEN_SECRET"),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 24*time.Hour),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 50),
	}

	if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
		log.Fatal("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
	}
	if cfg.TokenSecret == "" {
		log.Fatal("Required environment variable TOKEN_SECRET is not set.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid value for %s, using default %s", key, fallback)
	}
	return fallback
}
