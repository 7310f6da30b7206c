// Package kvstore предоставляет единый интерфейс key-value хранилища
// с несколькими реализациями: in-memory, файловая, Redis и PostgreSQL.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, когда ключ отсутствует в хранилище
var ErrNotFound = errors.New("key not found")

// Result представляет результат чтения одного ключа в батч-запросе
type Result struct {
	Value string
	Err   error
}

// Store определяет интерфейс key-value хранилища.
// Каждая операция атомарна в пределах одного ключа; батч-чтение MGet
// возвращает независимый результат для каждого ключа в порядке запроса.
type Store interface {
	// Get возвращает значение по ключу или ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение по ключу
	Set(ctx context.Context, key, value string) error
	// SetNX сохраняет значение, только если ключ отсутствует, и возвращает признак записи
	SetNX(ctx context.Context, key, value string) (bool, error)
	// Del удаляет ключи и возвращает количество удалённых
	Del(ctx context.Context, keys ...string) (int64, error)
	// Incr атомарно увеличивает целочисленное значение ключа и возвращает новое значение
	Incr(ctx context.Context, key string) (int64, error)
	// LPush добавляет значение в начало списка и возвращает длину списка
	LPush(ctx context.Context, key, value string) (int64, error)
	// SAdd добавляет элемент в множество
	SAdd(ctx context.Context, key, member string) error
	// SRem удаляет элемент из множества и возвращает признак удаления
	SRem(ctx context.Context, key, member string) (bool, error)
	// SMembers возвращает все элементы множества
	SMembers(ctx context.Context, key string) ([]string, error)
	// MGet возвращает значения нескольких ключей в порядке запроса
	MGet(ctx context.Context, keys ...string) ([]Result, error)
	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
	// Close освобождает ресурсы хранилища
	Close() error
}
