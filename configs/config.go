package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port               string
	Environment        string
	APIKey             string
	AdminUsername      string
	AdminPassword      string
	HFAPIURL           string
	HFAPIKey           string
	HFZeroShotModel    string
	HFRatingModel      string
	HFTimeout          time.Duration
	MongoURI           string
	MongoDatabase      string
	ComplaintThreshold float64
	AnalysisWorkers    int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		APIKey:             getEnv("API_KEY", ""),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		HFAPIURL:           getEnv("HF_API_URL", "https://api-inference.huggingface.co"),
		HFAPIKey:           getEnv("HF_API_KEY", ""),
		HFZeroShotModel:    getEnv("HF_ZEROSHOT_MODEL", "facebook/bart-large-mnli"),
		HFRatingModel:      getEnv("HF_RATING_MODEL", "nlptown/bert-base-multilingual-uncased-sentiment"),
		HFTimeout:          time.Duration(getEnvInt("HF_TIMEOUT_SECONDS", 30)) * time.Second,
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", "review_insight"),
		ComplaintThreshold: getEnvFloat("COMPLAINT_THRESHOLD", 0.5),
		AnalysisWorkers:    getEnvInt("ANALYSIS_WORKERS", 0), // 0はCPU数に自動設定
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
