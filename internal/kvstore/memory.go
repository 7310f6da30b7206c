package kvstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// MemoryStore реализует интерфейс Store с использованием map.
// Множества хранят порядок добавления элементов, списки — порядок LPush (новые в начале).
type MemoryStore struct {
	values map[string]string
	lists  map[string][]string
	sets   map[string][]string
	mutex  sync.RWMutex
}

// NewMemoryStore создаёт новый экземпляр MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		lists:  make(map[string][]string),
		sets:   make(map[string][]string),
	}
}

// Get возвращает значение по ключу, если оно существует
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	value, exists := s.values[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

// Set сохраняет значение по ключу
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[key] = value
	return nil
}

// SetNX сохраняет значение, только если ключ отсутствует
func (s *MemoryStore) SetNX(_ context.Context, key, value string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = value
	return true, nil
}

// Del удаляет ключи из всех пространств и возвращает количество удалённых
func (s *MemoryStore) Del(_ context.Context, keys ...string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var deleted int64
	for _, key := range keys {
		removed := false
		if _, exists := s.values[key]; exists {
			delete(s.values, key)
			removed = true
		}
		if _, exists := s.lists[key]; exists {
			delete(s.lists, key)
			removed = true
		}
		if _, exists := s.sets[key]; exists {
			delete(s.sets, key)
			removed = true
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

// Incr атомарно увеличивает целочисленное значение ключа
func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var current int64
	if raw, exists := s.values[key]; exists {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, errors.New("value is not an integer")
		}
		current = parsed
	}
	current++
	s.values[key] = strconv.FormatInt(current, 10)
	return current, nil
}

// LPush добавляет значение в начало списка
func (s *MemoryStore) LPush(_ context.Context, key, value string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lists[key] = append([]string{value}, s.lists[key]...)
	return int64(len(s.lists[key])), nil
}

// SAdd добавляет элемент в множество, сохраняя порядок добавления
func (s *MemoryStore) SAdd(_ context.Context, key, member string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, existing := range s.sets[key] {
		if existing == member {
			return nil
		}
	}
	s.sets[key] = append(s.sets[key], member)
	return nil
}

// SRem удаляет элемент из множества
func (s *MemoryStore) SRem(_ context.Context, key, member string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	members := s.sets[key]
	for i, existing := range members {
		if existing == member {
			s.sets[key] = append(members[:i:i], members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// SMembers возвращает копию элементов множества
func (s *MemoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	members := make([]string, len(s.sets[key]))
	copy(members, s.sets[key])
	return members, nil
}

// MGet возвращает значения нескольких ключей в порядке запроса
func (s *MemoryStore) MGet(_ context.Context, keys ...string) ([]Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	results := make([]Result, len(keys))
	for i, key := range keys {
		if value, exists := s.values[key]; exists {
			results[i] = Result{Value: value}
		} else {
			results[i] = Result{Err: ErrNotFound}
		}
	}
	return results, nil
}

// LRange возвращает элементы списка от новых к старым
func (s *MemoryStore) LRange(_ context.Context, key string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	items := make([]string, len(s.lists[key]))
	copy(items, s.lists[key])
	return items, nil
}

// Ping проверяет доступность хранилища
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close освобождает ресурсы хранилища
func (s *MemoryStore) Close() error {
	return nil
}
