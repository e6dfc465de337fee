package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLDriver хранит регионы в файлах <dataDir>/worlds/<world>/regions.yml
type YAMLDriver struct {
	dataDir string
}

// yamlFile - структура файла regions.yml
type yamlFile struct {
	Regions map[string]RegionRecord `yaml:"regions"`
}

// NewYAMLDriver создаёт файловый драйвер
func NewYAMLDriver(dataDir string) *YAMLDriver {
	return &YAMLDriver{dataDir: dataDir}
}

func (d *YAMLDriver) Name() string { return "yaml" }

func (d *YAMLDriver) path(world string) string {
	return filepath.Join(d.dataDir, "worlds", strings.ToLower(world), "regions.yml")
}

// Load читает файл мира; отсутствующий файл означает пустой мир
func (d *YAMLDriver) Load(_ context.Context, world string) ([]RegionRecord, error) {
	data, err := os.ReadFile(d.path(world))
	if os.IsNotExist(err) {
		return []RegionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения регионов мира %s: %w", world, err)
	}

	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("ошибка разбора regions.yml мира %s: %w", world, err)
	}

	records := make([]RegionRecord, 0, len(file.Regions))
	for id, rec := range file.Regions {
		rec.ID = id
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Save записывает файл атомарно через временный файл
func (d *YAMLDriver) Save(_ context.Context, world string, records []RegionRecord) error {
	file := yamlFile{Regions: make(map[string]RegionRecord, len(records))}
	for _, rec := range records {
		file.Regions[rec.ID] = rec
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("ошибка сериализации регионов мира %s: %w", world, err)
	}

	path := d.path(world)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога мира %s: %w", world, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи регионов мира %s: %w", world, err)
	}
	return os.Rename(tmp, path)
}

func (d *YAMLDriver) Close() error { return nil }
