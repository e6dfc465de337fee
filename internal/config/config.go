// Package config загружает конфигурацию сервера: YAML файл, затем
// переопределения из переменных окружения.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/eventbus"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Storage   store.Config    `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig описывает установленный движок защиты
type EngineConfig struct {
	// Edition - legacy (6.x) или modern (7.x)
	Edition         string       `yaml:"edition" env:"WGW_ENGINE_EDITION"`
	Version         string       `yaml:"version" env:"WGW_ENGINE_VERSION"`
	Worlds          []string     `yaml:"worlds" env:"WGW_WORLDS" envSeparator:","`
	RemovalStrategy string       `yaml:"removal_strategy" env:"WGW_REMOVAL_STRATEGY"`
	Flags           []CustomFlag `yaml:"flags"`
	// AutosaveInterval - период сохранения изменённых миров; 0 отключает автосохранение
	AutosaveInterval time.Duration `yaml:"autosave_interval" env:"WGW_AUTOSAVE_INTERVAL"`
}

// EngineVersion возвращает версию движка; пустая версия берётся по редакции
func (e EngineConfig) EngineVersion() string {
	if e.Version != "" {
		return e.Version
	}
	if strings.EqualFold(e.Edition, "legacy") {
		return "6.2.2"
	}
	return "7.0.9"
}

// Removal разбирает стратегию удаления: remove_children (по умолчанию) или unset_parent
func (e EngineConfig) Removal() (protection.RemovalStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(e.RemovalStrategy)) {
	case "", "remove_children":
		return protection.RemoveChildren, nil
	case "unset_parent":
		return protection.UnsetParentInChildren, nil
	}
	return 0, fmt.Errorf("unknown removal strategy %q", e.RemovalStrategy)
}

type EventBusConfig struct {
	// Driver - memory, jetstream или none
	Driver          string                   `yaml:"driver" env:"WGW_EVENTBUS_DRIVER"`
	JetStream       eventbus.JetStreamConfig `yaml:"jetstream" envPrefix:"WGW_NATS_"`
	MetricsInterval time.Duration            `yaml:"metrics_interval" env:"WGW_EVENTBUS_METRICS_INTERVAL"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
	// Mode - режим gin (debug, release, test)
	Mode string `yaml:"mode" env:"WGW_GIN_MODE"`
}

// GetHTTPPort возвращает порт HTTP API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "WGW_HTTP_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"WGW_LOG_LEVEL"`
	Dir   string `yaml:"dir" env:"WGW_LOG_DIR"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"WGW_OTEL_ENABLED"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	// Endpoint - host:port OTLP HTTP коллектора; пусто - значение по умолчанию экспортера
	Endpoint string `yaml:"endpoint" env:"WGW_OTLP_ENDPOINT"`
	// SampleRatio - доля трассируемых запросов (0..1); 0 трактуется как 1
	SampleRatio float64 `yaml:"sample_ratio" env:"WGW_OTEL_SAMPLE_RATIO"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Edition:          "modern",
			Worlds:           []string{"world", "world_nether", "world_the_end"},
			AutosaveInterval: 5 * time.Minute,
		},
		Storage: store.Config{
			Driver:  "yaml",
			DataDir: "data",
		},
		EventBus: EventBusConfig{
			Driver:          "memory",
			MetricsInterval: 15 * time.Second,
		},
		Server: ServerConfig{Mode: "release"},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
		Telemetry: TelemetryConfig{ServiceName: "worldguard-wrapper"},
	}
}

// Load читает YAML файл конфигурации и применяет переменные окружения.
// Если path == "", берётся WGW_CONFIG; без файла используются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WGW_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if _, err := cfg.Engine.Removal(); err != nil {
		return nil, err
	}
	if cfg.Engine.AutosaveInterval < 0 {
		return nil, fmt.Errorf("negative autosave interval %s", cfg.Engine.AutosaveInterval)
	}
	for _, f := range cfg.Engine.Flags {
		if _, err := f.ValueType(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
