package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"aiguard-backend/internal/settings"
)

type Config struct {
	// Server
	Port        string
	FrontendURL string

	// Redis (optional event relay)
	RedisURL string

	// Admin JWT (optional)
	AdminJWTSecret string

	// Uploads
	UploadMaxMB int
	TempDir     string

	// Seed for the runtime settings store
	Seed settings.Settings
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("EXT_PORT", "8000"),
		FrontendURL:    getEnvOrDefault("FRONTEND_URL", "*"),
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		AdminJWTSecret: getEnvOrDefault("ADMIN_JWT_SECRET", ""),
		UploadMaxMB:    getEnvAsIntOrDefault("UPLOAD_MAX_MB", 100),
		TempDir:        getEnvOrDefault("TEMP_DIR", os.TempDir()),
		Seed:           loadSeed(),
	}

	return cfg
}

// loadSeed reads the initial guard, scanner and model settings. The result
// is normalized the same way as a runtime update.
func loadSeed() settings.Settings {
	d := settings.Defaults()
	return settings.Settings{
		ModelBaseURL:   getEnvOrDefault("OLLAMA_BASE_URL", ""),
		ModelName:      getEnvOrDefault("OLLAMA_MODEL", ""),
		ModelAPI:       getEnvOrDefault("MODEL_API", d.ModelAPI),
		GuardAPIKey:    getEnvOrDefault("V1_GUARD_API_KEY", ""),
		GuardURL:       getEnvOrDefault("V1_GUARD_URL_BASE", d.GuardURL),
		GuardEnabled:   getEnvAsBoolOrDefault("V1_GUARD_ENABLED", d.GuardEnabled),
		GuardDetailed:  getEnvAsBoolOrDefault("V1_GUARD_DETAILED", d.GuardDetailed),
		EnforceSide:    getEnvOrDefault("ENFORCE_SIDE", d.EnforceSide),
		ScannerAPIKey:  getEnvOrDefault("V1FS_API_KEY", ""),
		ScannerRegion:  getEnvOrDefault("V1FS_REGION", d.ScannerRegion),
		ScannerEnabled: getEnvAsBoolOrDefault("V1FS_ENABLED", d.ScannerEnabled),
	}.Normalize()
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

// getEnvAsBoolOrDefault accepts true/1/yes/on and false/0/no/off.
func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultVal
	}
}
