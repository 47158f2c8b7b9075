package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Postgres configuration; when DBHost is empty the application
	// falls back to the in-memory store (development mode)
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Redis configuration (notification stream)
	RedisAddr      string
	RedisDB        int
	RedisStream    string
	RedisMaxStream int

	// Memcache configuration (fetch rate-limit blocks)
	MemcacheAddr string

	// Crawler configuration
	Sources     []string
	FlipkartURL string
	AmazonURL   string
	MaxPages    int
	PageDelay   time.Duration
	DetailDelay time.Duration

	// Price tracker configuration
	TrackInterval time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisMax, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES_PER_SOURCE", "2"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_SECONDS", "2"))
	detailDelay, _ := strconv.Atoi(getEnv("DETAIL_DELAY_SECONDS", "1"))
	trackInterval, _ := strconv.Atoi(getEnv("TRACK_INTERVAL_SECONDS", "3600"))

	return &Config{
		DBUser:         getEnv("DB_USER", "pricetracker"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBHost:         getEnv("DB_HOST", ""),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBName:         getEnv("DB_NAME", "pricetracker"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        redisDB,
		RedisStream:    getEnv("REDIS_STREAM", "price-alerts"),
		RedisMaxStream: redisMax,
		MemcacheAddr:   getEnv("MEMCACHE_ADDR", "localhost:11211"),
		Sources:        splitList(getEnv("SOURCES", "flipkart")),
		FlipkartURL:    getEnv("FLIPKART_URL", "https://www.flipkart.com"),
		AmazonURL:      getEnv("AMAZON_URL", "https://www.amazon.com"),
		MaxPages:       maxPages,
		PageDelay:      time.Duration(pageDelay) * time.Second,
		DetailDelay:    time.Duration(detailDelay) * time.Second,
		TrackInterval:  time.Duration(trackInterval) * time.Second,
		Environment:    getEnv("ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for obviously broken values
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources enabled")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES_PER_SOURCE must be at least 1, got %d", c.MaxPages)
	}
	if c.PageDelay < 0 || c.DetailDelay < 0 {
		return fmt.Errorf("crawl delays must not be negative")
	}
	if c.TrackInterval < time.Minute {
		return fmt.Errorf("TRACK_INTERVAL_SECONDS must be at least 60, got %s", c.TrackInterval)
	}
	return nil
}

// SourceEnabled reports whether a source id is in the enabled list
func (c *Config) SourceEnabled(name string) bool {
	for _, s := range c.Sources {
		if s == name {
			return true
		}
	}
	return false
}

// DatabaseDSN builds the postgres connection string, or "" when no
// database host is configured
func (c *Config) DatabaseDSN() string {
	if c.DBHost == "" {
		return ""
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", getEnv("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
