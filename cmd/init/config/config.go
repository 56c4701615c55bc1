package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the presentation and logging knobs. The boot sequence itself
// is fixed in lib/bootconfig and cannot be changed from here.
type Config struct {
	Lang      string
	Debug     bool
	Console   string
	Color     string
	TrueColor bool
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Lang:      os.Getenv("LANG"),
		Debug:     getEnvBool("TEMPLEINIT_DEBUG", false),
		Console:   getEnv("TEMPLEINIT_CONSOLE", ""),
		Color:     getEnv("TEMPLEINIT_COLOR", "auto"),
		TrueColor: getEnvBool("TEMPLEINIT_TRUECOLOR", true),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
