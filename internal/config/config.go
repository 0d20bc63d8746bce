package config

import (
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Snapshot  SnapshotConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Inventory InventoryConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	SessionIdle    time.Duration
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SnapshotConfig struct {
	Driver string // memory, redis or postgres
	Prefix string
	TTL    time.Duration // 0 keeps snapshots forever
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type InventoryConfig struct {
	BulkConcurrency   int
	LowStockThreshold int
}

// IsDevelopment reports whether the server runs in development mode
func (c ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DSN builds the pgx connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable&search_path=%s",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.Database, c.Schema,
	)
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Enabled reports whether a Redis host is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func Load() *Config {
	// Local overrides win over .env, like in the frontend toolchain.
	if err := godotenv.Load(".env.local"); err == nil {
		log.Printf("Loaded overrides from .env.local")
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SESSION_IDLE_MINUTES", 30)
	viper.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	viper.SetDefault("API_TIMEOUT_SECONDS", 15)
	viper.SetDefault("SNAPSHOT_DRIVER", "memory")
	viper.SetDefault("SNAPSHOT_PREFIX", "storefront")
	viper.SetDefault("SNAPSHOT_TTL_MINUTES", 0)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("INVENTORY_BULK_CONCURRENCY", 8)
	viper.SetDefault("INVENTORY_LOW_STOCK_THRESHOLD", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitCSV(viper.GetString("ALLOWED_ORIGINS")),
			SessionIdle:    time.Duration(viper.GetInt("SESSION_IDLE_MINUTES")) * time.Minute,
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("API_TIMEOUT_SECONDS")) * time.Second,
		},
		Snapshot: SnapshotConfig{
			Driver: strings.ToLower(viper.GetString("SNAPSHOT_DRIVER")),
			Prefix: viper.GetString("SNAPSHOT_PREFIX"),
			TTL:    time.Duration(viper.GetInt("SNAPSHOT_TTL_MINUTES")) * time.Minute,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Inventory: InventoryConfig{
			BulkConcurrency:   viper.GetInt("INVENTORY_BULK_CONCURRENCY"),
			LowStockThreshold: viper.GetInt("INVENTORY_LOW_STOCK_THRESHOLD"),
		},
	}
}

func splitCSV(v string) []string {
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
