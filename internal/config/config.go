package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	ServerURL      string
	RequestTimeout string

	StorageBackend string
	StoragePath    string
	CartKey        string

	RedisAddr     string
	RedisPassword string
	RedisDB       string
}

func Load() *Config {
	storagePath := os.Getenv("SHOP_STORAGE_PATH")
	if storagePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			storagePath = ".waveshop"
		} else {
			storagePath = filepath.Join(home, ".waveshop")
		}
	}

	return &Config{
		ServerURL:      getEnv("SHOP_SERVER_URL", "http://localhost:8000"),
		RequestTimeout: getEnv("SHOP_REQUEST_TIMEOUT", "10s"),

		StorageBackend: getEnv("SHOP_STORAGE_BACKEND", "file"),
		StoragePath:    storagePath,
		CartKey:        getEnv("SHOP_CART_KEY", "waveshop:cart"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) Timeout() time.Duration {
	return parseDuration(c.RequestTimeout, 10*time.Second)
}

func (c *Config) RedisDBIndex() int {
	return parseInt(c.RedisDB, 0)
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
