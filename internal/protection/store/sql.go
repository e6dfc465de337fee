package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Andre601/WorldGuardWrapper/internal/protection/store/migrations"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLConfig содержит параметры SQL-хранилища
type SQLConfig struct {
	// Dialect: mysql, sqlite или postgres
	Dialect string `yaml:"dialect" env:"DIALECT"`
	DSN     string `yaml:"dsn" env:"DSN"`
}

// SQLDriver хранит регионы в таблице wgw_regions (одна строка на регион)
type SQLDriver struct {
	db      *sql.DB
	dialect string
}

// goose хранит диалект и файловую систему глобально
var gooseMu sync.Mutex

type dialectInfo struct {
	driverName   string
	gooseDialect string
}

var dialects = map[string]dialectInfo{
	"mysql":    {driverName: "mysql", gooseDialect: "mysql"},
	"sqlite":   {driverName: "sqlite", gooseDialect: "sqlite3"},
	"postgres": {driverName: "pgx", gooseDialect: "postgres"},
}

// NewSQLDriver подключается к базе и применяет миграции
func NewSQLDriver(ctx context.Context, cfg SQLConfig) (*SQLDriver, error) {
	dialect := strings.ToLower(cfg.Dialect)
	if dialect == "" {
		dialect = "sqlite"
	}
	info, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: sql dialect %q", ErrUnknownDriver, cfg.Dialect)
	}

	db, err := sql.Open(info.driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть %s: %w", dialect, err)
	}
	if dialect == "sqlite" {
		// Одна запись за раз; для :memory: ещё и единственная база
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с %s: %w", dialect, err)
	}

	if err := migrate(ctx, db, info.gooseDialect); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLDriver{db: db, dialect: dialect}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (d *SQLDriver) Name() string { return "sql" }

// rebind заменяет ? на $n для postgres
func (d *SQLDriver) rebind(query string) string {
	if d.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Load читает все регионы мира
func (d *SQLDriver) Load(ctx context.Context, world string) ([]RegionRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		d.rebind(`SELECT id, data FROM wgw_regions WHERE world = ? ORDER BY id`),
		strings.ToLower(world))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения регионов мира %s: %w", world, err)
	}
	defer rows.Close()

	records := make([]RegionRecord, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		var rec RegionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("повреждённая запись региона %s/%s: %w", world, id, err)
		}
		rec.ID = id
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save заменяет регионы мира в одной транзакции
func (d *SQLDriver) Save(ctx context.Context, world string, records []RegionRecord) error {
	world = strings.ToLower(world)

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, d.rebind(`DELETE FROM wgw_regions WHERE world = ?`), world); err != nil {
		return fmt.Errorf("ошибка очистки регионов мира %s: %w", world, err)
	}

	stmt, err := tx.PrepareContext(ctx, d.rebind(
		`INSERT INTO wgw_regions (world, id, type, priority, parent, data) VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("ошибка сериализации региона %s: %w", rec.ID, err)
		}
		var parent sql.NullString
		if rec.Parent != "" {
			parent = sql.NullString{String: rec.Parent, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, world, rec.ID, rec.Type, rec.Priority, parent, string(data)); err != nil {
			return fmt.Errorf("ошибка записи региона %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (d *SQLDriver) Close() error {
	return d.db.Close()
}
