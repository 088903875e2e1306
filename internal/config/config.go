// Package config loads process configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Storage drivers
const (
	DriverBigQuery  = "bigquery"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

// Routers
const (
	RouterChi     = "chi"
	RouterGorilla = "gorilla"
	RouterGin     = "gin"
	RouterEcho    = "echo"
	RouterFiber   = "fiber"
	RouterStdlib  = "http"
)

type Config struct {
	App     AppConfig     `koanf:"app"`
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Report  ReportConfig  `koanf:"report"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Router          string        `koanf:"router"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
}

type StorageConfig struct {
	Driver           string   `koanf:"driver"`
	ProjectID        string   `koanf:"project_id"`
	Dataset          string   `koanf:"dataset"`
	Location         string   `koanf:"location"`
	Endpoint         string   `koanf:"endpoint"`
	UserTable        string   `koanf:"user_table"`
	EntitlementTable string   `koanf:"entitlement_table"`
	Plans            []string `koanf:"plans"`
	DatabaseURL      string   `koanf:"database_url"`
	MaxConns         int32    `koanf:"max_conns"`
}

type ReportConfig struct {
	BaseURL string `koanf:"base_url"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Path      string `koanf:"path"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "gofulfill",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.router":           RouterChi,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",
		"server.max_body_bytes":   1 << 20,

		"storage.driver":            DriverBigQuery,
		"storage.dataset":           "client_data",
		"storage.user_table":        "user_map",
		"storage.entitlement_table": "report_plan",
		"storage.plans":             []string{"Bronze", "Silver", "Gold"},
		"storage.max_conns":         10,

		"report.base_url": "https://your-reporting-system.com/reports",

		"log.level":  "info",
		"log.format": "json",

		"metrics.enabled":   true,
		"metrics.namespace": "gofulfill",
		"metrics.path":      "/metrics",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"ENVIRONMENT":          "app.environment",
	"HOST":                 "server.host",
	"PORT":                 "server.port",
	"ROUTER":               "server.router",
	"STORAGE_DRIVER":       "storage.driver",
	"GOOGLE_CLOUD_PROJECT": "storage.project_id",
	"BIGQUERY_DATASET":     "storage.dataset",
	"BIGQUERY_LOCATION":    "storage.location",
	"BIGQUERY_ENDPOINT":    "storage.endpoint",
	"DATABASE_URL":         "storage.database_url",
	"REPORT_BASE_URL":      "report.base_url",
	"LOG_LEVEL":            "log.level",
	"LOG_FORMAT":           "log.format",
	"METRICS_ENABLED":      "metrics.enabled",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	switch c.Storage.Driver {
	case DriverBigQuery, DriverFirestore:
		// An empty project ID is detected from credentials when the client is built.
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Server.Router {
	case RouterChi, RouterGorilla, RouterGin, RouterEcho, RouterFiber, RouterStdlib:
	default:
		return fmt.Errorf("unknown router %q", c.Server.Router)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
