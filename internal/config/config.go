// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the application configuration.
type Config struct {
	// Camera
	CameraIndex int
	FrameWidth  int
	FrameHeight int
	TargetFPS   int

	// External detector sidecar
	DetectorURL string

	// Style control REST API
	APIAddr string

	// Initial overlay style
	Color   string
	Opacity float64
	Blur    int
	Enabled bool

	Preview  bool
	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	return &Config{
		CameraIndex: getEnvInt("LIPTINT_CAMERA_INDEX", 0),
		FrameWidth:  getEnvInt("LIPTINT_FRAME_WIDTH", 1280),
		FrameHeight: getEnvInt("LIPTINT_FRAME_HEIGHT", 720),
		TargetFPS:   getEnvInt("LIPTINT_TARGET_FPS", 30),
		DetectorURL: getEnv("LIPTINT_DETECTOR_URL", "ws://localhost:9021/landmarks"),
		APIAddr:     getEnv("LIPTINT_API_ADDR", ":8080"),
		Color:       getEnv("LIPTINT_COLOR", "#C2185B"),
		Opacity:     getEnvFloat("LIPTINT_OPACITY", 0.55),
		Blur:        getEnvInt("LIPTINT_BLUR", 6),
		Enabled:     getEnvBool("LIPTINT_ENABLED", true),
		Preview:     getEnvBool("LIPTINT_PREVIEW", true),
		LogLevel:    getEnv("LIPTINT_LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid float, using default")
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, using default")
		return def
	}
	return b
}
