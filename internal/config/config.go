package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the SmartMoney services.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	// Port is the HTTP listen port for cmd/api.
	Port string

	// GCSBucket is the bucket holding per-user finance documents.
	// Empty disables remote persistence (the in-memory store is used instead).
	GCSBucket string

	// BigQueryProject and BigQueryDataset locate the analytics snapshot table.
	// Empty project disables snapshot export.
	BigQueryProject string
	BigQueryDataset string

	// RatesURL is the public dollar-quote endpoint.
	RatesURL string

	// DefaultDollarRate is used when no custom rate is set and the quote
	// endpoint is unreachable.
	DefaultDollarRate float64

	// AssistantModel is the GenAI model used by the financial assistant.
	AssistantModel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; missing files are not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              getEnv("PORT", "8080"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		BigQueryProject:   os.Getenv("BQ_PROJECT"),
		BigQueryDataset:   getEnv("BQ_DATASET", "finance"),
		RatesURL:          getEnv("RATES_URL", "https://dolarapi.com/v1/dolares/blue"),
		DefaultDollarRate: getEnvFloat("DEFAULT_DOLLAR_RATE", 1130),
		AssistantModel:    getEnv("ASSISTANT_MODEL", "gemini-2.5-flash"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
