package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// BadgerDriver хранит регионы мира одной записью "regions:<world>" (JSON, сжатый zstd)
type BadgerDriver struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerDriver открывает BadgerDB в <dataDir>/regions
func NewBadgerDriver(dataDir string) (*BadgerDriver, error) {
	opts := badger.DefaultOptions(filepath.Join(dataDir, "regions"))
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &BadgerDriver{db: db, encoder: enc, decoder: dec, isReady: true}, nil
}

func (d *BadgerDriver) Name() string { return "badger" }

func badgerKey(world string) []byte {
	return []byte("regions:" + strings.ToLower(world))
}

// Load читает и распаковывает регионы мира
func (d *BadgerDriver) Load(_ context.Context, world string) ([]RegionRecord, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if !d.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(world))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	// Если мир ещё не сохранялся, возвращаем пустой список
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []RegionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	raw, err := d.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки регионов мира %s: %w", world, err)
	}
	return decodeRecords(raw)
}

// Save сериализует и сжимает регионы мира
func (d *BadgerDriver) Save(_ context.Context, world string, records []RegionRecord) error {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if !d.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ошибка сериализации регионов: %w", err)
	}
	data := d.encoder.EncodeAll(raw, nil)

	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(world), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Close закрывает BadgerDB
func (d *BadgerDriver) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.isReady {
		return nil
	}
	d.isReady = false
	d.encoder.Close()
	d.decoder.Close()
	return d.db.Close()
}
