// Package store - драйверы хранения регионов по мирам.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDriver - в конфигурации указан неизвестный драйвер
var ErrUnknownDriver = errors.New("unknown region storage driver")

// Point3 - точка в записи региона
type Point3 struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	Z int `yaml:"z" json:"z"`
}

// Point2 - вершина полигона
type Point2 struct {
	X int `yaml:"x" json:"x"`
	Z int `yaml:"z" json:"z"`
}

// DomainRecord - владельцы или участники региона
type DomainRecord struct {
	Players []string `yaml:"players,omitempty" json:"players,omitempty"`
	Groups  []string `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// RegionRecord - сериализуемое представление региона.
// Значения флагов уже преобразованы в простые типы (строки, числа, списки, карты).
type RegionRecord struct {
	ID       string         `yaml:"-" json:"id"`
	Type     string         `yaml:"type" json:"type"`
	Priority int            `yaml:"priority" json:"priority"`
	Parent   string         `yaml:"parent,omitempty" json:"parent,omitempty"`
	Min      *Point3        `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *Point3        `yaml:"max,omitempty" json:"max,omitempty"`
	Points   []Point2       `yaml:"points,omitempty" json:"points,omitempty"`
	MinY     int            `yaml:"min-y,omitempty" json:"min_y,omitempty"`
	MaxY     int            `yaml:"max-y,omitempty" json:"max_y,omitempty"`
	Flags    map[string]any `yaml:"flags" json:"flags"`
	Owners   DomainRecord   `yaml:"owners" json:"owners"`
	Members  DomainRecord   `yaml:"members" json:"members"`
}

// Driver загружает и сохраняет все регионы одного мира целиком
type Driver interface {
	// Name возвращает имя драйвера (yaml, badger, sql, redis, memory)
	Name() string
	// Load возвращает регионы мира; отсутствие данных - пустой список без ошибки
	Load(ctx context.Context, world string) ([]RegionRecord, error)
	// Save заменяет сохранённые регионы мира
	Save(ctx context.Context, world string, records []RegionRecord) error
	// Close освобождает ресурсы драйвера
	Close() error
}

// Config содержит настройки хранения регионов
type Config struct {
	Driver  string      `yaml:"driver" env:"WGW_STORAGE_DRIVER"`
	DataDir string      `yaml:"data_dir" env:"WGW_DATA_DIR"`
	SQL     SQLConfig   `yaml:"sql" envPrefix:"WGW_SQL_"`
	Redis   RedisConfig `yaml:"redis" envPrefix:"WGW_REDIS_"`
}

// Open создаёт драйвер по конфигурации
func Open(ctx context.Context, cfg Config) (Driver, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	driver := strings.ToLower(cfg.Driver)
	switch driver {
	case "", "yaml", "yml":
		return NewYAMLDriver(dataDir), nil
	case "badger":
		return NewBadgerDriver(dataDir)
	case "sql", "mysql", "sqlite", "postgres":
		sqlCfg := cfg.SQL
		if sqlCfg.Dialect == "" && driver != "sql" {
			sqlCfg.Dialect = driver
		}
		return NewSQLDriver(ctx, sqlCfg)
	case "redis":
		return NewRedisDriver(ctx, cfg.Redis)
	case "memory":
		return NewMemoryDriver(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
