package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"go.yaml.in/yaml/v4"
)

/*
Файл конфигурации (YAML) необязателен: путь берётся из configPath.
Поверх файла применяются переменные окружения:
API_BASE_URL, RATE_LIMIT_WINDOW_MS, RATE_LIMIT_MAX_REQUESTS,
TRACKING_RETRY_COUNT, TRACKING_RETRY_DELAY_MS, HTTP_ADDR, LOG_LEVEL.
*/

const (
	BackendModeHTTP = "http"
	BackendModeFake = "fake"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const defaultTrackingRetries = 3

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogEnv   string `yaml:"log_env"`
}

type BackendConfig struct {
	Mode           string  `yaml:"mode"` // "http" | "fake"
	BaseURL        string  `yaml:"base_url" env:"API_BASE_URL"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRPS         float64 `yaml:"max_rps"`
}

type RateLimitConfig struct {
	Backend          string `yaml:"backend"` // "memory" | "redis"
	WindowMs         int    `yaml:"window_ms" env:"RATE_LIMIT_WINDOW_MS"`
	MaxRequests      int    `yaml:"max_requests" env:"RATE_LIMIT_MAX_REQUESTS"`
	CleanupThreshold int    `yaml:"cleanup_threshold"`
}

type TrackingConfig struct {
	RetryCount   int `yaml:"retry_count" env:"TRACKING_RETRY_COUNT"`
	RetryDelayMs int `yaml:"retry_delay_ms" env:"TRACKING_RETRY_DELAY_MS"`
	Concurrency  int `yaml:"concurrency"`
}

type SessionConfig struct {
	Backend      string `yaml:"backend"` // "memory" | "redis"
	TTLSeconds   int    `yaml:"ttl_seconds"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Host                 string `yaml:"host"`
	Port                 int    `yaml:"port"`
	OrderLookupTopicName string `yaml:"order_lookup_topic_name"`
}

func (k KafkaConfig) Enabled() bool { return k.Host != "" }

func (k KafkaConfig) Addr() string {
	return fmt.Sprintf("%s:%d", k.Host, k.Port)
}

// LoadConfig reads filename (may be empty), applies env overrides and defaults.
func LoadConfig(filename string) (*Config, error) {
	config := Config{Tracking: TrackingConfig{RetryCount: defaultTrackingRetries}}

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) WithDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":3000"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogEnv == "" {
		c.Server.LogEnv = "prod"
	}

	if c.Backend.Mode == "" {
		c.Backend.Mode = BackendModeHTTP
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8080"
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 10
	}

	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = StoreMemory
	}
	if c.RateLimit.WindowMs <= 0 {
		c.RateLimit.WindowMs = 60_000
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 5
	}
	if c.RateLimit.CleanupThreshold <= 0 {
		c.RateLimit.CleanupThreshold = 1000
	}

	// 0 ретраев допустимо: значение по умолчанию выставляется до чтения файла
	if c.Tracking.RetryCount < 0 {
		c.Tracking.RetryCount = defaultTrackingRetries
	}
	if c.Tracking.RetryDelayMs <= 0 {
		c.Tracking.RetryDelayMs = 1000
	}
	if c.Tracking.Concurrency <= 0 {
		c.Tracking.Concurrency = 10
	}

	if c.Session.Backend == "" {
		c.Session.Backend = StoreMemory
	}
	if c.Session.TTLSeconds <= 0 {
		c.Session.TTLSeconds = 1800
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "ot_session"
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Kafka.Port == 0 {
		c.Kafka.Port = 9092
	}
	if c.Kafka.OrderLookupTopicName == "" {
		c.Kafka.OrderLookupTopicName = "order.lookup"
	}
}

func (c *Config) Validate() error {
	switch c.Backend.Mode {
	case BackendModeHTTP, BackendModeFake:
	default:
		return fmt.Errorf("unknown backend.mode %q", c.Backend.Mode)
	}
	for name, v := range map[string]string{"rate_limit.backend": c.RateLimit.Backend, "session.backend": c.Session.Backend} {
		if v != StoreMemory && v != StoreRedis {
			return fmt.Errorf("unknown %s %q", name, v)
		}
	}
	return nil
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowMs) * time.Millisecond
}

func (c *Config) TrackingRetryDelay() time.Duration {
	return time.Duration(c.Tracking.RetryDelayMs) * time.Millisecond
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}
