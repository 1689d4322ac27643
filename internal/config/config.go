// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabaseURL    string
	TursoURL       string
	TursoAuthToken string

	// Input artifacts
	UAEScheduleJSON   string
	USScheduleJSON    string
	CNScheduleJSON    string
	UAEPDFPath        string
	USTariffPath      string
	PDFToTextPath     string
	BrandProductsPath string

	// Derived artifacts
	ProductMapPath string

	// Country tables; defaults are overridden by COUNTRY_LABELS_FILE
	CountryLabels CountryLabels
	CountryNames  CountryNames

	// Object Storage (S3-compatible), used to publish the product map
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string
	StorageRegion    string
	ProductMapKey    string // object key for the published product map

	// Lookup API
	Port               int
	BaseURL            string
	CORSOrigins        []string
	RateLimitPerMinute int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration

	// China schedule scraper
	ScraperBaseURL        string
	ScraperOutputPath     string
	ScraperCheckpointPath string
	ScraperDelay          time.Duration
	ScraperTimeout        time.Duration
	ScraperMaxPages       int
	ScraperIgnoreRobots   bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", "file:hscode.db"),
		TursoURL:       getEnv("TURSO_URL", ""),
		TursoAuthToken: getEnv("TURSO_AUTH_TOKEN", ""),

		UAEScheduleJSON:   getEnv("UAE_SCHEDULE_JSON", "hs_codes_uae.json"),
		USScheduleJSON:    getEnv("US_SCHEDULE_JSON", "hs_codes_us.json"),
		CNScheduleJSON:    getEnv("CN_SCHEDULE_JSON", "hs_codes_cn.json"),
		UAEPDFPath:        getEnv("UAE_PDF_PATH", "UAE Files/HScode-2022-v0.1.pdf"),
		USTariffPath:      getEnv("US_TARIFF_PATH", "US File/hts_2025_basic_edition_xlsx.xlsx"),
		PDFToTextPath:     getEnv("PDFTOTEXT_PATH", "pdftotext"),
		BrandProductsPath: getEnv("BRAND_PRODUCTS_PATH", "brand_products.json"),
		ProductMapPath:    getEnv("PRODUCT_MAP_PATH", "global_product_map.json"),

		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),
		ProductMapKey:    getEnv("PRODUCT_MAP_KEY", "product-maps/global_product_map.json"),

		Port:               getEnvInt("PORT", 8080),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigins:        getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),

		ScraperBaseURL:        getEnv("SCRAPER_BASE_URL", "https://www.htshub.com/cn-hs"),
		ScraperOutputPath:     getEnv("SCRAPER_OUTPUT_PATH", "hs_codes_cn.json"),
		ScraperCheckpointPath: getEnv("SCRAPER_CHECKPOINT_PATH", "scraper_checkpoint.json"),
		ScraperDelay:          getEnvDuration("SCRAPER_DELAY", 500*time.Millisecond),
		ScraperTimeout:        getEnvDuration("SCRAPER_TIMEOUT", 30*time.Second),
		ScraperMaxPages:       getEnvInt("SCRAPER_MAX_PAGES", 50),
		ScraperIgnoreRobots:   getEnvBool("SCRAPER_IGNORE_ROBOTS", false),
	}

	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""

	cfg.CountryLabels = DefaultCountryLabels()
	cfg.CountryNames = DefaultCountryNames()
	if path := getEnv("COUNTRY_LABELS_FILE", ""); path != "" {
		if err := LoadCountryFile(path, cfg.CountryLabels, cfg.CountryNames); err != nil {
			return nil, err
		}
	}

	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimitPerMinute)
	}

	return cfg, nil
}

// UsesReplica returns true when the database should run as a Turso embedded replica.
func (c *Config) UsesReplica() bool {
	return c.TursoURL != "" && c.TursoAuthToken != ""
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}
	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}
