package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MemoryDriver хранит регионы в памяти процесса
type MemoryDriver struct {
	mu     sync.RWMutex
	worlds map[string][]byte
}

// NewMemoryDriver создаёт пустое хранилище в памяти
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{worlds: make(map[string][]byte)}
}

func (d *MemoryDriver) Name() string { return "memory" }

// Load возвращает копию сохранённых записей
func (d *MemoryDriver) Load(_ context.Context, world string) ([]RegionRecord, error) {
	d.mu.RLock()
	data, ok := d.worlds[strings.ToLower(world)]
	d.mu.RUnlock()

	if !ok {
		return []RegionRecord{}, nil
	}
	return decodeRecords(data)
}

// Save сохраняет записи; хранится JSON-снимок, чтобы вызывающий не мог изменить данные
func (d *MemoryDriver) Save(_ context.Context, world string, records []RegionRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.worlds[strings.ToLower(world)] = data
	d.mu.Unlock()
	return nil
}

func (d *MemoryDriver) Close() error { return nil }

func decodeRecords(data []byte) ([]RegionRecord, error) {
	var records []RegionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []RegionRecord{}
	}
	return records, nil
}
