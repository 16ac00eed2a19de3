package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	LogLevel    string

	// Pickup dates and day windows are computed in this location.
	Location      *time.Location
	CollationLang string

	// Require order pickup dates to be declared available days.
	RequirePickupDay bool

	OCRAPIURL   string
	OCRAPIKey   string
	OCRLanguage string

	LLMAPIURL          string
	LLMAPIKey          string
	LLMModel           string
	MenuImportMaxWords int
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=traiteur port=5432 sslmode=disable"

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] .env bulunamadı, ortam değişkenleri kullanılıyor")
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:        getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CollationLang:      getEnv("COLLATION_LANG", "fr"),
		RequirePickupDay:   parseBool("REQUIRE_PICKUP_DAY", false),
		OCRAPIURL:          getEnv("OCR_API_URL", "https://api.ocr.space/parse/image"),
		OCRAPIKey:          getEnv("OCR_API_KEY", ""),
		OCRLanguage:        getEnv("OCR_LANGUAGE", "fre"),
		LLMAPIURL:          getEnv("LLM_API_URL", "https://api.perplexity.ai/chat/completions"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		LLMModel:           getEnv("LLM_MODEL", "sonar"),
		MenuImportMaxWords: parseInt("MENU_IMPORT_MAX_WORDS", 4000),
	}

	cfg.Location = time.Local
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("[FATAL] APP_TIMEZONE geçersiz: %v", err)
		}
		cfg.Location = loc
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET tanımlanmamış")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor")
	}
	if cfg.OCRAPIKey == "" || cfg.LLMAPIKey == "" {
		log.Println("[WARN] OCR_API_KEY / LLM_API_KEY eksik, menü içe aktarma çalışmayacak")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("[WARN] %s için geçersiz bool: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func parseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("[WARN] %s için geçersiz sayı: %s", key, v)
			return def
		}
		return n
	}
	return def
}
