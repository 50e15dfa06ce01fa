package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT   string
	DB_URL string

	SHOPIFY_API_KEY      string
	SHOPIFY_API_SECRET   string
	SHOPIFY_SCOPES       string
	SHOPIFY_API_VERSION  string
	SHOPIFY_BILLING_TEST bool

	APP_URL           string
	CORS_ORIGIN       string
	TOKEN_ENC_KEY_B64 string
	REDIS_URL         string
	ADMIN_API_TOKEN   string

	PRO_PLAN_PRICE float64
	PRO_TRIAL_DAYS int

	LOG_LEVEL  string
	LOG_FORMAT string
)

// LoadEnv reads .env (when present) and the process environment into the
// package-level settings. Missing required keys are fatal.
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")

	SHOPIFY_API_KEY = mustEnv("SHOPIFY_API_KEY")
	SHOPIFY_API_SECRET = mustEnv("SHOPIFY_API_SECRET")
	SHOPIFY_SCOPES = getEnv("SHOPIFY_SCOPES", "read_customers")
	SHOPIFY_API_VERSION = getEnv("SHOPIFY_API_VERSION", "2024-10")
	SHOPIFY_BILLING_TEST = getBool("SHOPIFY_BILLING_TEST", false)

	APP_URL = mustEnv("APP_URL")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "https://admin.shopify.com")
	TOKEN_ENC_KEY_B64 = mustEnv("TOKEN_ENC_KEY_B64")
	REDIS_URL = getEnv("REDIS_URL", "")
	ADMIN_API_TOKEN = getEnv("ADMIN_API_TOKEN", "")

	PRO_PLAN_PRICE = getFloat("PRO_PLAN_PRICE", 4.99)
	PRO_TRIAL_DAYS = getInt("PRO_TRIAL_DAYS", 7)

	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	LOG_FORMAT = getEnv("LOG_FORMAT", "console")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %q", key, v)
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("Invalid number for %s: %q", key, v)
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("Invalid boolean for %s: %q", key, v)
	}
	return b
}
