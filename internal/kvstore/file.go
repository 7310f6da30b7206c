package kvstore

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// journalEntry представляет одну запись журнала операций в JSON-файле
type journalEntry struct {
	Op     string `json:"op"`
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
	Member string `json:"member,omitempty"`
}

// FileStore реализует интерфейс Store поверх MemoryStore,
// записывая каждую мутацию в файловый журнал и восстанавливая состояние при старте
type FileStore struct {
	memory   *MemoryStore
	file     *os.File
	filePath string
	logger   *zap.Logger
	mutex    sync.Mutex
}

// NewFileStore создаёт новый экземпляр FileStore и восстанавливает состояние из журнала
func NewFileStore(filePath string, logger *zap.Logger) (*FileStore, error) {
	store := &FileStore{
		memory:   NewMemoryStore(),
		filePath: filePath,
		logger:   logger,
	}

	// Создаём директорию, если не существует
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Восстанавливаем состояние из существующего журнала
	if err := store.replay(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	store.file = file
	return store, nil
}

// replay применяет записи журнала к in-memory состоянию
func (s *FileStore) replay() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// Пропускаем некорректные строки и логируем это
			s.logger.Warn("Skipping invalid journal line", zap.String("line", string(scanner.Bytes())), zap.Error(err))
			continue
		}
		switch entry.Op {
		case "set":
			_ = s.memory.Set(ctx, entry.Key, entry.Value)
		case "del":
			_, _ = s.memory.Del(ctx, entry.Key)
		case "incr":
			_, _ = s.memory.Incr(ctx, entry.Key)
		case "lpush":
			_, _ = s.memory.LPush(ctx, entry.Key, entry.Value)
		case "sadd":
			_ = s.memory.SAdd(ctx, entry.Key, entry.Member)
		case "srem":
			_, _ = s.memory.SRem(ctx, entry.Key, entry.Member)
		default:
			s.logger.Warn("Skipping unknown journal operation", zap.String("op", entry.Op))
		}
	}
	return scanner.Err()
}

// appendEntry записывает одну операцию в журнал
func (s *FileStore) appendEntry(entry journalEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// Get возвращает значение по ключу, если оно существует
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	return s.memory.Get(ctx, key)
}

// Set сохраняет значение по ключу и записывает операцию в журнал
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := s.appendEntry(journalEntry{Op: "set", Key: key, Value: value}); err != nil {
		return err
	}
	return s.memory.Set(ctx, key, value)
}

// SetNX сохраняет значение, только если ключ отсутствует
func (s *FileStore) SetNX(ctx context.Context, key, value string) (bool, error) {
	ok, err := s.memory.SetNX(ctx, key, value)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.appendEntry(journalEntry{Op: "set", Key: key, Value: value}); err != nil {
		return false, err
	}
	return true, nil
}

// Del удаляет ключи и записывает операции в журнал
func (s *FileStore) Del(ctx context.Context, keys ...string) (int64, error) {
	for _, key := range keys {
		if err := s.appendEntry(journalEntry{Op: "del", Key: key}); err != nil {
			return 0, err
		}
	}
	return s.memory.Del(ctx, keys...)
}

// Incr атомарно увеличивает целочисленное значение ключа
func (s *FileStore) Incr(ctx context.Context, key string) (int64, error) {
	value, err := s.memory.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := s.appendEntry(journalEntry{Op: "incr", Key: key}); err != nil {
		return 0, err
	}
	return value, nil
}

// LPush добавляет значение в начало списка
func (s *FileStore) LPush(ctx context.Context, key, value string) (int64, error) {
	if err := s.appendEntry(journalEntry{Op: "lpush", Key: key, Value: value}); err != nil {
		return 0, err
	}
	return s.memory.LPush(ctx, key, value)
}

// SAdd добавляет элемент в множество
func (s *FileStore) SAdd(ctx context.Context, key, member string) error {
	if err := s.appendEntry(journalEntry{Op: "sadd", Key: key, Member: member}); err != nil {
		return err
	}
	return s.memory.SAdd(ctx, key, member)
}

// SRem удаляет элемент из множества
func (s *FileStore) SRem(ctx context.Context, key, member string) (bool, error) {
	removed, err := s.memory.SRem(ctx, key, member)
	if err != nil || !removed {
		return removed, err
	}
	if err := s.appendEntry(journalEntry{Op: "srem", Key: key, Member: member}); err != nil {
		return false, err
	}
	return true, nil
}

// SMembers возвращает все элементы множества
func (s *FileStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.memory.SMembers(ctx, key)
}

// MGet возвращает значения нескольких ключей в порядке запроса
func (s *FileStore) MGet(ctx context.Context, keys ...string) ([]Result, error) {
	return s.memory.MGet(ctx, keys...)
}

// Ping проверяет доступность хранилища
func (s *FileStore) Ping(ctx context.Context) error {
	return s.memory.Ping(ctx)
}

// Close закрывает файл журнала
func (s *FileStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.file.Close()
}
