// Package config loads service configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all service settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// DataDir is the root for the product and planogram stores.
	DataDir string

	// OutputDir is where analysis artifacts (saved images, overlays) go.
	OutputDir string

	// InferenceURL is the external detector endpoint.
	InferenceURL string

	// MinConfidence is the detection confidence floor.
	MinConfidence float64

	// OCRLanguage is the Tesseract language code for label reading.
	OCRLanguage string

	// LogLevel enables debug logging when set to "debug".
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present; real environment variables
// win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:          getEnv("SHELFSCAN_ADDR", ":8080"),
		DataDir:       getEnv("SHELFSCAN_DATA_DIR", "data"),
		OutputDir:     getEnv("SHELFSCAN_OUTPUT_DIR", "saved_images"),
		InferenceURL:  getEnv("SHELFSCAN_INFERENCE_URL", "http://localhost:5000/predict"),
		MinConfidence: getEnvFloat("SHELFSCAN_MIN_CONFIDENCE", 0.1),
		OCRLanguage:   getEnv("SHELFSCAN_OCR_LANGUAGE", "eng"),
		LogLevel:      getEnv("SHELFSCAN_LOG_LEVEL", ""),
	}
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
