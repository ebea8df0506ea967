package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	Environment       string
	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string
	RunMigrations     bool
	RunSeed           bool
	MaxBodyBytes      int64

	// Batch generation seeds new roster rows with these values.
	DefaultRequiredAttendance float64
	DefaultOnsitePerformance  float64
	DefaultAnnotationScore    float64

	WeightAttendance float64
	WeightAnnotation float64
	WeightOnsite     float64
	WeightAccuracy   float64
}

func Load() Config {
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Environment:       getEnv("APP_ENV", "development"),
		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:           getEnvBool("RUN_SEED", true),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 4194304)),

		DefaultRequiredAttendance: getEnvFloat("DEFAULT_REQUIRED_ATTENDANCE", 22),
		DefaultOnsitePerformance:  getEnvFloat("DEFAULT_ONSITE_PERFORMANCE", 3),
		DefaultAnnotationScore:    getEnvFloat("DEFAULT_ANNOTATION_SCORE", 80),

		WeightAttendance: getEnvFloat("WEIGHT_ATTENDANCE", 20),
		WeightAnnotation: getEnvFloat("WEIGHT_ANNOTATION", 20),
		WeightOnsite:     getEnvFloat("WEIGHT_ONSITE", 20),
		WeightAccuracy:   getEnvFloat("WEIGHT_ACCURACY", 40),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.WeightAttendance < 0 || c.WeightAnnotation < 0 || c.WeightOnsite < 0 || c.WeightAccuracy < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}
	if c.DefaultOnsitePerformance < 1 || c.DefaultOnsitePerformance > 5 {
		return fmt.Errorf("DEFAULT_ONSITE_PERFORMANCE must be between 1 and 5")
	}
	return nil
}
