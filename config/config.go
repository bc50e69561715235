// Package config assembles service configuration from environment
// variables. Everything except the Groq API key has a working default
// for local compose setups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the resolved settings for the query service.
type Config struct {
	Port string

	// LLM backend (Groq exposes an OpenAI-compatible API).
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	// Collaborator endpoints.
	WeaviateURL   string
	EmbedderURL   string
	RerankerURL   string
	TranslatorURL string

	// Decision policy.
	ConfidenceThreshold float64
	SearchTopK          int

	// OverridesConfig optionally points at a YAML file replacing the
	// compiled-in validator-override keyword sets.
	OverridesConfig string

	AllowedOrigins []string
	OTelEndpoint   string
}

// Load reads the environment. It fails only on settings that have no
// usable default.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnvString("LAWGUIDE_PORT", "8000"),
		GroqAPIKey:          strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		GroqBaseURL:         getEnvString("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:           getEnvString("GROQ_MODEL", "llama-3.3-70b-versatile"),
		WeaviateURL:         getEnvString("WEAVIATE_SERVICE_URL", "http://localhost:8080"),
		EmbedderURL:         getEnvString("EMBEDDER_SERVICE_URL", "http://localhost:8001"),
		RerankerURL:         getEnvString("RERANKER_SERVICE_URL", "http://localhost:8002"),
		TranslatorURL:       getEnvString("TRANSLATOR_SERVICE_URL", "http://localhost:5000"),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.75),
		SearchTopK:          getEnvInt("SEARCH_TOP_K", 10),
		OverridesConfig:     os.Getenv("OVERRIDES_CONFIG"),
		AllowedOrigins:      splitOrigins(getEnvString("ALLOWED_ORIGINS", "http://localhost:5173")),
		OTelEndpoint:        getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.GroqAPIKey == "" {
		return Config{}, fmt.Errorf("GROQ_API_KEY is not set")
	}
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		return Config{}, fmt.Errorf("CONFIDENCE_THRESHOLD must be in (0, 1], got %v", cfg.ConfidenceThreshold)
	}
	if cfg.SearchTopK < 1 || cfg.SearchTopK > 50 {
		return Config{}, fmt.Errorf("SEARCH_TOP_K must be in [1, 50], got %d", cfg.SearchTopK)
	}
	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
