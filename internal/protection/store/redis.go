package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	Password  string `yaml:"password" env:"PASSWORD"`
	DB        int    `yaml:"db" env:"DB"`
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// RedisDriver хранит регионы мира в хеше <prefix><world>: поле = id, значение = JSON
type RedisDriver struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDriver подключается к Redis
func NewRedisDriver(ctx context.Context, cfg RedisConfig) (*RedisDriver, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "wgw:regions:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDriver{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

func (d *RedisDriver) Name() string { return "redis" }

func (d *RedisDriver) key(world string) string {
	return d.keyPrefix + strings.ToLower(world)
}

// Load читает все поля хеша мира
func (d *RedisDriver) Load(ctx context.Context, world string) ([]RegionRecord, error) {
	fields, err := d.client.HGetAll(ctx, d.key(world)).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения регионов мира %s из Redis: %w", world, err)
	}

	records := make([]RegionRecord, 0, len(fields))
	for id, data := range fields {
		var rec RegionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("повреждённая запись региона %s/%s: %w", world, id, err)
		}
		rec.ID = id
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Save заменяет хеш мира атомарно (MULTI/EXEC)
func (d *RedisDriver) Save(ctx context.Context, world string, records []RegionRecord) error {
	values := make(map[string]interface{}, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("ошибка сериализации региона %s: %w", rec.ID, err)
		}
		values[rec.ID] = data
	}

	key := d.key(world)
	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка записи регионов мира %s в Redis: %w", world, err)
	}
	return nil
}

func (d *RedisDriver) Close() error {
	return d.client.Close()
}
