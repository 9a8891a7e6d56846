package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type Config struct {
	Port          string
	GinMode       string
	LogLevel      string
	DBDriver      string
	DBSource      string
	JWTSecret     string
	JWTTTL        time.Duration
	AdminEmail    string
	AdminPassword string
	CORSOrigins   []string
	RateLimit     int
	RateInterval  time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using environment only")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBSource:      getEnv("DB_SOURCE", "bookings.db?_busy_timeout=5000&_txlock=immediate"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTTTL:        getDuration("JWT_TTL", 24*time.Hour),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimit:     getInt("RATE_LIMIT", 50),
		RateInterval:  getDuration("RATE_INTERVAL", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		utils.ErrorLogger.Printf("invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		utils.ErrorLogger.Printf("invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
