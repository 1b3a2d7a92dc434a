package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPollInterval  = time.Second
	defaultAutoplayDelay = 500 * time.Millisecond
)

type AppConfig struct {
	API     APIConfig
	Storage StorageConfig
	Log     LogConfig
	Metrics MetricsConfig
	UserID  string
}

type APIConfig struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

type StorageConfig struct {
	Type          string
	Path          string
	ResultsDir    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type LogConfig struct {
	Mode string
	File string
}

type MetricsConfig struct {
	Addr string
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:   getEnv("ADULTNA_API_URL", "http://localhost:3001/api"),
			Token:     getEnv("ADULTNA_API_TOKEN", ""),
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
			RateLimit: getEnvAsFloat("API_RATE_LIMIT", 10),
			RateBurst: getEnvAsInt("API_RATE_BURST", 20),
		},
		Storage: StorageConfig{
			Type:          getEnv("STORAGE_TYPE", "file"),
			Path:          getEnv("STORAGE_PATH", ".adultna/storage.json"),
			ResultsDir:    getEnv("RESULTS_DIR", "results"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_PREFIX", "adultna:"),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "release"),
			File: getEnv("LOG_FILE", "logs/coach.log"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		UserID: getEnv("ADULTNA_USER_ID", ""),
	}
}

// Validate проверяет корректность конфигурации окружения
func (c *AppConfig) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("ADULTNA_API_URL не может быть пустым")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT должно быть больше 0")
	}

	if c.API.RateLimit <= 0 || c.API.RateBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT и API_RATE_BURST должны быть больше 0")
	}

	switch c.Storage.Type {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("STORAGE_TYPE должен быть memory, file или redis (получено %q)", c.Storage.Type)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
