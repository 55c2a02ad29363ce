package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Alerting
	SleepingAlertRatio   float64
	SleepingAlertMinSize int
	PhoneAlertRatio      float64
	AlertCooldown        time.Duration

	// Metrics
	RecentLogWindow int

	// Event fan-out
	EventWorkers int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		JWTSecret:   mustGetEnv("JWT_SECRET"),

		SleepingAlertRatio:   getEnvAsFloatOrDefault("SLEEPING_ALERT_RATIO", 0.30),
		SleepingAlertMinSize: getEnvAsIntOrDefault("SLEEPING_ALERT_MIN_SIZE", 5),
		PhoneAlertRatio:      getEnvAsFloatOrDefault("PHONE_ALERT_RATIO", 0.20),
		AlertCooldown:        time.Duration(getEnvAsIntOrDefault("ALERT_COOLDOWN_MINUTES", 5)) * time.Minute,

		RecentLogWindow: getEnvAsIntOrDefault("RECENT_LOG_WINDOW", 20),
		EventWorkers:    getEnvAsIntOrDefault("EVENT_WORKERS", 3),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
