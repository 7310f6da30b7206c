package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// PostgresStore реализует интерфейс Store с использованием PostgreSQL.
// Значения, счётчики, множества и списки хранятся в отдельных таблицах,
// но образуют единое пространство ключей: Incr пишет в ту же таблицу kv,
// из которой читают Get и MGet.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore создаёт новое подключение к базе данных и таблицы хранилища
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Создаём таблицы
	schema := []string{
		`CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS kv_sets (
            key TEXT NOT NULL,
            member TEXT NOT NULL,
            added_at BIGSERIAL,
            PRIMARY KEY (key, member)
        )`,
		`CREATE TABLE IF NOT EXISTS kv_lists (
            key TEXT NOT NULL,
            seq BIGSERIAL PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS kv_lists_key_idx ON kv_lists (key)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Get возвращает значение по ключу, если оно существует
func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set сохраняет значение по ключу
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		key, value)
	if err != nil {
		s.logger.Error("Failed to set key", zap.String("key", key), zap.Error(err))
	}
	return err
}

// SetNX сохраняет значение, только если ключ отсутствует
func (s *PostgresStore) SetNX(ctx context.Context, key, value string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING",
		key, value)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Del удаляет ключи из всех таблиц и возвращает количество удалённых
func (s *PostgresStore) Del(ctx context.Context, keys ...string) (int64, error) {
	var deleted int64
	for _, key := range keys {
		var affected int64
		for _, query := range []string{
			"DELETE FROM kv WHERE key = $1",
			"DELETE FROM kv_sets WHERE key = $1",
			"DELETE FROM kv_lists WHERE key = $1",
		} {
			result, err := s.db.ExecContext(ctx, query, key)
			if err != nil {
				return deleted, err
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return deleted, err
			}
			affected += rows
		}
		if affected > 0 {
			deleted++
		}
	}
	return deleted, nil
}

// Incr атомарно увеличивает целочисленное значение ключа
func (s *PostgresStore) Incr(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO kv (key, value) VALUES ($1, '1')
         ON CONFLICT (key) DO UPDATE SET value = ((kv.value)::bigint + 1)::text
         RETURNING (value)::bigint`,
		key).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// LPush добавляет значение в начало списка и возвращает длину списка
func (s *PostgresStore) LPush(ctx context.Context, key, value string) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO kv_lists (key, value) VALUES ($1, $2)", key, value); err != nil {
		return 0, err
	}
	var length int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kv_lists WHERE key = $1", key).Scan(&length); err != nil {
		return 0, err
	}
	return length, nil
}

// SAdd добавляет элемент в множество
func (s *PostgresStore) SAdd(ctx context.Context, key, member string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv_sets (key, member) VALUES ($1, $2) ON CONFLICT (key, member) DO NOTHING",
		key, member)
	return err
}

// SRem удаляет элемент из множества
func (s *PostgresStore) SRem(ctx context.Context, key, member string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM kv_sets WHERE key = $1 AND member = $2", key, member)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SMembers возвращает элементы множества в порядке добавления
func (s *PostgresStore) SMembers(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member FROM kv_sets WHERE key = $1 ORDER BY added_at", key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// MGet возвращает значения нескольких ключей одним запросом
func (s *PostgresStore) MGet(ctx context.Context, keys ...string) ([]Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(keys))
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = key
	}
	query := "SELECT key, value FROM kv WHERE key IN (" + strings.Join(placeholders, ", ") + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		found[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, len(keys))
	for i, key := range keys {
		if value, exists := found[key]; exists {
			results[i] = Result{Value: value}
		} else {
			results[i] = Result{Err: ErrNotFound}
		}
	}
	return results, nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает соединение с базой данных
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
