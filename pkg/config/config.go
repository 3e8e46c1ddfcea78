package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	FirebaseStorageBucket   string
	LocalStorePath          string
	MetricsEnabled          bool
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		LocalStorePath:          getEnv("LOCAL_STORE_PATH", "./data/site.db"),
		MetricsEnabled:          getEnv("METRICS_ENABLED", "true") == "true",
	}
}

// IsFirebaseConfigured reports whether enough configuration is present to
// attempt a live connection. When false the stores run in local mode.
func (c *Config) IsFirebaseConfigured() bool {
	return c.FirebaseCredentialsPath != "" && c.FirebaseProjectID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
