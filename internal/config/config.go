package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server and the manage CLI read from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	CORSOrigin    string
	RedisAddr     string
	LogFile       string
	AdminUsername string
	AdminPassword string
	PollsPageSize int
}

// Load reads a .env file if one exists and then the process environment.
func Load() *Config {
	// Production sets env vars directly, so a missing .env is not an error.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://mysite.db"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		LogFile:       os.Getenv("LOG_FILE"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		PollsPageSize: getEnvInt("POLLS_PAGE_SIZE", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
