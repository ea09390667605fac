package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	ServerPort  int
	JWTSecret   []byte
	// SecretGenerated marks a per-process random secret: tokens will not
	// survive a restart. Set when JWT_SECRET is absent.
	SecretGenerated bool
	AllowedOrigins  []string
	ESURL           string
	ESUser          string
	ESPassword      string
	KafkaBrokers    []string
	KafkaTopic      string
	LogLevel        string
}

// Load reads configuration from the environment, with .env as a convenience
// for local runs. There is no hardcoded signing secret: when JWT_SECRET is
// missing a random one is generated instead.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	cfg := &Config{
		DatabaseURL:    EnvDefault("DATABASE_URL", "echotube.db"),
		ServerPort:     EnvIntDefault("SERVER_PORT", 3001),
		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		AllowedOrigins: CSV(EnvDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		ESURL:          os.Getenv("ES_URL"),
		ESUser:         os.Getenv("ES_USER"),
		ESPassword:     os.Getenv("ES_PASSWORD"),
		KafkaBrokers:   CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     EnvDefault("KAFKA_TOPIC", "echotube.events"),
		LogLevel:       EnvDefault("LOG_LEVEL", "info"),
	}

	if len(cfg.JWTSecret) == 0 {
		secret, err := generateSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		cfg.SecretGenerated = true
	}

	return cfg, nil
}

func generateSecret() ([]byte, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	out := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(out, raw)
	return out, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
