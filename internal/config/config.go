// Package config loads caller configuration for the example harness and
// benchmark binaries from the environment, with an optional .env file
// backing local development. The core package (internal/lob) never reads
// configuration of its own — arena_capacity and friends are plain
// constructor arguments there; this package only exists for the binaries
// that wrap it.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the environment-derived settings shared by cmd/talon and
// cmd/talonbench.
type Config struct {
	ArenaCapacity uint32
	Instrument    string
	LogLevel      string
	Producers     int
}

// Load reads TALON_* environment variables, with an optional .env file in
// the working directory providing defaults for local runs.
func Load() Config {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	return Config{
		ArenaCapacity: getEnvUint32("TALON_ARENA_CAPACITY", 1<<20),
		Instrument:    getEnvString("TALON_INSTRUMENT", "XYZ"),
		LogLevel:      getEnvString("TALON_LOG_LEVEL", "info"),
		Producers:     getEnvInt("TALON_PRODUCERS", 4),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(uintValue)
		}
	}
	return defaultValue
}
