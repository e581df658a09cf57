package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	HTTP    ServerConfig
	MySQL   MySQLConfig
	Log     LogConfig
	Gateway GatewayConfig
	Bridge  BridgeConfig
	Jobs    JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

// GatewayConfig is the surface the platform's settings screen owns; the
// bridge consumes it read-only.
type GatewayConfig struct {
	Enabled                   bool
	Title                     string
	Description               string
	APIToken                  string
	APIBaseURL                string
	WebhookSecret             string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

type BridgeConfig struct {
	ReturnURLBase  string
	WebhookURL     string
	PendingTimeout time.Duration
	JobBatchSize   int32
}

type JobsConfig struct {
	ExpirePendingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	cfg := &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "epay-gateway-bridge"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Gateway: GatewayConfig{
			Enabled:                   getBoolEnv("EPAY_ENABLED", true),
			Title:                     getEnv("EPAY_TITLE", "Epay"),
			Description:               getEnv("EPAY_DESCRIPTION", "Pay using bKash, Nagad, Rocket, Upay and many more..."),
			APIToken:                  getEnv("EPAY_API_TOKEN", ""),
			APIBaseURL:                getEnv("EPAY_API_URL", ""),
			WebhookSecret:             getEnv("EPAY_WEBHOOK_SECRET", ""),
			SignatureToleranceSeconds: int64(getIntEnv("EPAY_SIGNATURE_TOLERANCE_SECONDS", 300)),
			HTTPTimeout:               getSecondsEnv("EPAY_HTTP_TIMEOUT_SECONDS", 15*time.Second),
		},
		Bridge: BridgeConfig{
			ReturnURLBase:  getEnv("BRIDGE_RETURN_URL_BASE", ""),
			WebhookURL:     getEnv("BRIDGE_WEBHOOK_URL", ""),
			PendingTimeout: getMinutesEnv("BRIDGE_PENDING_TIMEOUT_MINUTES", 60*time.Minute),
			JobBatchSize:   int32(getIntEnv("BRIDGE_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			ExpirePendingInterval: getMinutesEnv("BRIDGE_EXPIRE_PENDING_INTERVAL_MINUTES", 5*time.Minute),
		},
	}

	if err := cfg.Gateway.validate(cfg.Bridge); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (g GatewayConfig) validate(bridge BridgeConfig) error {
	if !g.Enabled {
		return nil
	}
	if g.APIToken == "" {
		return errors.New("EPAY_API_TOKEN is required when the gateway is enabled")
	}
	if err := requireAbsoluteURL("EPAY_API_URL", g.APIBaseURL); err != nil {
		return err
	}
	if g.WebhookSecret == "" {
		return errors.New("EPAY_WEBHOOK_SECRET is required when the gateway is enabled")
	}
	if err := requireAbsoluteURL("BRIDGE_RETURN_URL_BASE", bridge.ReturnURLBase); err != nil {
		return err
	}
	if err := requireAbsoluteURL("BRIDGE_WEBHOOK_URL", bridge.WebhookURL); err != nil {
		return err
	}
	return nil
}

func requireAbsoluteURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required when the gateway is enabled", name)
	}
	parsed, err := url.Parse(value)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
