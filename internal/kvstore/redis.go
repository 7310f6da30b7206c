package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore реализует интерфейс Store с использованием Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создаёт новый экземпляр RedisStore и проверяет соединение
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Get возвращает значение по ключу, если оно существует
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set сохраняет значение по ключу без срока жизни
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// SetNX сохраняет значение, только если ключ отсутствует
func (s *RedisStore) SetNX(ctx context.Context, key, value string) (bool, error) {
	return s.client.SetNX(ctx, key, value, 0).Result()
}

// Del удаляет ключи и возвращает количество удалённых
func (s *RedisStore) Del(ctx context.Context, keys ...string) (int64, error) {
	return s.client.Del(ctx, keys...).Result()
}

// Incr атомарно увеличивает целочисленное значение ключа
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

// LPush добавляет значение в начало списка
func (s *RedisStore) LPush(ctx context.Context, key, value string) (int64, error) {
	return s.client.LPush(ctx, key, value).Result()
}

// SAdd добавляет элемент в множество
func (s *RedisStore) SAdd(ctx context.Context, key, member string) error {
	return s.client.SAdd(ctx, key, member).Err()
}

// SRem удаляет элемент из множества
func (s *RedisStore) SRem(ctx context.Context, key, member string) (bool, error) {
	removed, err := s.client.SRem(ctx, key, member).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// SMembers возвращает все элементы множества
func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

// MGet возвращает значения нескольких ключей одним pipeline-запросом.
// Отсутствие отдельного ключа не считается ошибкой всего батча.
func (s *RedisStore) MGet(ctx context.Context, keys ...string) ([]Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	results := make([]Result, len(keys))
	for i, cmd := range cmds {
		value, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			results[i] = Result{Err: ErrNotFound}
			continue
		}
		results[i] = Result{Value: value, Err: err}
	}
	return results, nil
}

// Ping проверяет соединение с Redis
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (s *RedisStore) Close() error {
	return s.client.Close()
}
