package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything cmd/server needs to wire the process. Values come
// from the environment so main stays lean; defaults target local development.
type Config struct {
	Addr        string
	Environment string

	// PostgresURL selects the durable stores. Empty keeps the in-memory
	// stores, which is what the test suites and local runs use.
	PostgresURL string

	// RedisURL enables the default-template cache. Empty disables caching.
	RedisURL string

	KafkaBrokers  []string
	KafkaGroupID  string
	KafkaClientID string

	// UploadDir is the root under which one artifact per certificateId lives.
	UploadDir string
	// FontDir holds .ttf files selectable by template field font families.
	FontDir string

	JWTSigningKey string

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from CERTSERVE_* environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("CERTSERVE_ADDR", ":8080"),
		Environment:     envOr("CERTSERVE_ENV", "development"),
		PostgresURL:     os.Getenv("CERTSERVE_POSTGRES_URL"),
		RedisURL:        os.Getenv("CERTSERVE_REDIS_URL"),
		KafkaGroupID:    envOr("CERTSERVE_KAFKA_GROUP_ID", "certserve"),
		KafkaClientID:   envOr("CERTSERVE_KAFKA_CLIENT_ID", "certserve"),
		UploadDir:       envOr("CERTSERVE_UPLOAD_DIR", "uploads/certificates"),
		FontDir:         envOr("CERTSERVE_FONT_DIR", "fonts"),
		JWTSigningKey:   envOr("CERTSERVE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := os.Getenv("CERTSERVE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
