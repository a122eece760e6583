// Package config loads service settings from env files and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are loaded in order; variables already set are never overridden
var DefaultEnvFiles = []string{".env", "env.production", "env.local"}

type Config struct {
	Port           string
	Env            string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	RateLimit      RateLimitConfig
	Database       DatabaseConfig
	History        HistoryConfig
	Pages          PageStoreConfig
	Render         RenderConfig
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type DatabaseConfig struct {
	Type       string // sqlite, mysql or postgres
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SQLitePath string
}

type HistoryConfig struct {
	Backend       string // gorm, redis or file
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	FileDir       string
}

type PageStoreConfig struct {
	Backend   string // disk, minio or s3
	Dir       string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type RenderConfig struct {
	BarcodeServiceURL string
	BarcodeRPS        float64
	BarcodeBurst      int
	BarcodeCacheSize  int
	BarcodeTimeout    time.Duration
	PresetsFile       string
}

// Load reads the given env files (DefaultEnvFiles when none are given) and
// builds a Config from the environment
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	for _, file := range files {
		loadEnvFile(file)
	}
	return FromEnv()
}

func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); err != nil {
		return
	}
	if err := godotenv.Load(filename); err != nil {
		log.Printf("WARNING: Failed to load %s: %v", filename, err)
		return
	}
	log.Printf("DEBUG: Loaded environment from %s", filename)
}

// FromEnv builds a Config from the current environment only
func FromEnv() (*Config, error) {
	env := getEnv("APP_ENV", "local")
	cfg := &Config{
		Port:           normalizePort(getEnv("PORT", "8080")),
		Env:            env,
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimit: RateLimitConfig{
			RPS:   getFloat("RATE_LIMIT_RPS", 10),
			Burst: getInt("RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			Type:       strings.ToLower(getEnv("DB_TYPE", "sqlite")),
			Host:       getEnv("DB_HOST", "127.0.0.1"),
			Port:       getEnv("DB_PORT", ""),
			User:       getEnv("DB_USER", ""),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "back_scan"),
			SQLitePath: getEnv("SQLITE_PATH", "back_scan.db"),
		},
		History: HistoryConfig{
			Backend:       strings.ToLower(getEnv("HISTORY_BACKEND", "gorm")),
			CacheSize:     getInt("HISTORY_CACHE_SIZE", 1024),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0),
			FileDir:       getEnv("HISTORY_DIR", "data/history"),
		},
		Pages: PageStoreConfig{
			Backend:   strings.ToLower(getEnv("PAGESTORE_BACKEND", "disk")),
			Dir:       getEnv("PAGESTORE_DIR", "data/pages"),
			Endpoint:  getEnv("PAGESTORE_ENDPOINT", ""),
			Region:    getEnv("PAGESTORE_REGION", "us-east-1"),
			AccessKey: getEnv("PAGESTORE_ACCESS_KEY", ""),
			SecretKey: getEnv("PAGESTORE_SECRET_KEY", ""),
			Bucket:    getEnv("PAGESTORE_BUCKET", "back-scan-pages"),
			UseSSL:    getBool("PAGESTORE_USE_SSL", env != "local"),
		},
		Render: RenderConfig{
			BarcodeServiceURL: strings.TrimRight(getEnv("BARCODE_SERVICE_URL", "https://barcodeapi.org/api"), "/"),
			BarcodeRPS:        getFloat("BARCODE_RPS", 5),
			BarcodeBurst:      getInt("BARCODE_BURST", 5),
			BarcodeCacheSize:  getInt("BARCODE_CACHE_SIZE", 256),
			BarcodeTimeout:    getDuration("BARCODE_TIMEOUT", 10*time.Second),
			PresetsFile:       getEnv("STYLE_PRESETS_FILE", ""),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and settings the service cannot run with
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type)
	}
	switch c.History.Backend {
	case "gorm", "redis", "file":
	default:
		return fmt.Errorf("unsupported HISTORY_BACKEND %q", c.History.Backend)
	}
	switch c.Pages.Backend {
	case "disk", "minio", "s3":
	default:
		return fmt.Errorf("unsupported PAGESTORE_BACKEND %q", c.Pages.Backend)
	}
	if c.JWTSecret == "" {
		if c.Env == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("WARNING: JWT_SECRET not set, using an insecure development secret")
		c.JWTSecret = "back-scan-dev-secret"
	}
	if c.History.CacheSize <= 0 {
		return fmt.Errorf("HISTORY_CACHE_SIZE must be positive")
	}
	if c.Render.BarcodeCacheSize <= 0 {
		return fmt.Errorf("BARCODE_CACHE_SIZE must be positive")
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("WARNING: Invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("WARNING: Invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("WARNING: Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
