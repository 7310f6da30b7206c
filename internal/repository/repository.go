// Package repository реализует хранение коротких ссылок поверх key-value хранилища.
//
// Схема ключей:
//
//	url:<slug>          — JSON записи LinkRecord
//	user:<owner>:links  — множество слагов владельца
//	clicks:<slug>       — счётчик переходов
//	logs:<slug>         — журнал событий переходов (новые в начале)
//	slugs:all           — множество всех слагов (для статистики)
//	owners:all          — множество всех владельцев (для статистики)
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrSlugExists возвращается при попытке занять уже существующий слаг
	ErrSlugExists = errors.New("slug already exists")
	// ErrLinkNotFound возвращается, когда ссылка не найдена
	ErrLinkNotFound = errors.New("link not found")
)

// Ключи хранилища
const (
	urlKeyPrefix    = "url:"
	clicksKeyPrefix = "clicks:"
	logsKeyPrefix   = "logs:"
	allSlugsKey     = "slugs:all"
	allOwnersKey    = "owners:all"
)

// URLKey возвращает ключ записи ссылки для слага
func URLKey(slug string) string {
	return urlKeyPrefix + slug
}

// ClicksKey возвращает ключ счётчика переходов для слага
func ClicksKey(slug string) string {
	return clicksKeyPrefix + slug
}

// LogsKey возвращает ключ журнала переходов для слага
func LogsKey(slug string) string {
	return logsKeyPrefix + slug
}

// OwnerKey возвращает ключ множества слагов владельца
func OwnerKey(ownerID string) string {
	return "user:" + ownerID + ":links"
}

// Links реализует операции над записями ссылок и индексом владельцев
type Links struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewLinks создаёт новый экземпляр Links
func NewLinks(store kvstore.Store, logger *zap.Logger) *Links {
	return &Links{store: store, logger: logger}
}

// Create резервирует слаг условной записью и добавляет его в индекс владельца.
// Запись и индекс обновляются двумя шагами; сбой между ними оставляет запись
// без элемента индекса, она останется доступной для редиректа, но пропадёт
// из списка владельца.
func (r *Links) Create(ctx context.Context, rec models.LinkRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ok, err := r.store.SetNX(ctx, URLKey(rec.Slug), string(data))
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlugExists
	}

	if err := r.store.SAdd(ctx, OwnerKey(rec.OwnerID), rec.Slug); err != nil {
		return err
	}
	if err := r.store.SAdd(ctx, allSlugsKey, rec.Slug); err != nil {
		return err
	}
	return r.store.SAdd(ctx, allOwnersKey, rec.OwnerID)
}

// Get возвращает запись ссылки по слагу
func (r *Links) Get(ctx context.Context, slug string) (models.LinkRecord, error) {
	raw, err := r.store.Get(ctx, URLKey(slug))
	if errors.Is(err, kvstore.ErrNotFound) {
		return models.LinkRecord{}, ErrLinkNotFound
	}
	if err != nil {
		return models.LinkRecord{}, err
	}
	return decodeRecord(slug, raw)
}

// SlugsByOwner возвращает слаги владельца в порядке перечисления индекса
func (r *Links) SlugsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	return r.store.SMembers(ctx, OwnerKey(ownerID))
}

// Records батчево загружает записи по слагам. Слаги без записи пропускаются:
// висячий элемент индекса после частичного удаления не виден читателям.
func (r *Links) Records(ctx context.Context, slugs []string) ([]models.LinkRecord, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = URLKey(slug)
	}
	results, err := r.store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	records := make([]models.LinkRecord, 0, len(slugs))
	for i, res := range results {
		if res.Err != nil {
			if !errors.Is(res.Err, kvstore.ErrNotFound) {
				r.logger.Warn("Failed to fetch link record", zap.String("slug", slugs[i]), zap.Error(res.Err))
			}
			continue
		}
		rec, err := decodeRecord(slugs[i], res.Value)
		if err != nil {
			r.logger.Warn("Skipping malformed link record", zap.String("slug", slugs[i]), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindByInternalID находит запись владельца по внутреннему идентификатору.
// Линейный проход по слагам владельца; приемлемо, так как индекс ограничен одним владельцем.
func (r *Links) FindByInternalID(ctx context.Context, ownerID, internalID string) (models.LinkRecord, error) {
	slugs, err := r.SlugsByOwner(ctx, ownerID)
	if err != nil {
		return models.LinkRecord{}, err
	}
	records, err := r.Records(ctx, slugs)
	if err != nil {
		return models.LinkRecord{}, err
	}
	for _, rec := range records {
		// Индекс уже ограничен владельцем, проверка OwnerID — защита в глубину
		if rec.InternalID == internalID && rec.OwnerID == ownerID {
			return rec, nil
		}
	}
	return models.LinkRecord{}, ErrLinkNotFound
}

// UpdateLongURL заменяет целевой URL записи, не меняя slug, internalId и ownerId
func (r *Links) UpdateLongURL(ctx context.Context, ownerID, internalID, longURL string) (models.LinkRecord, error) {
	rec, err := r.FindByInternalID(ctx, ownerID, internalID)
	if err != nil {
		return models.LinkRecord{}, err
	}

	rec.LongURL = longURL
	data, err := json.Marshal(rec)
	if err != nil {
		return models.LinkRecord{}, err
	}
	if err := r.store.Set(ctx, URLKey(rec.Slug), string(data)); err != nil {
		return models.LinkRecord{}, err
	}
	return rec, nil
}

// Delete удаляет запись и элемент индекса владельца. Сначала удаляется запись,
// затем индекс: сбой между шагами оставляет висячий элемент индекса, но не
// запись без индекса. Счётчики и журнал переходов намеренно не удаляются.
func (r *Links) Delete(ctx context.Context, ownerID, internalID string) error {
	rec, err := r.FindByInternalID(ctx, ownerID, internalID)
	if err != nil {
		return err
	}

	if _, err := r.store.Del(ctx, URLKey(rec.Slug)); err != nil {
		return err
	}
	if _, err := r.store.SRem(ctx, OwnerKey(ownerID), rec.Slug); err != nil {
		return err
	}
	if _, err := r.store.SRem(ctx, allSlugsKey, rec.Slug); err != nil {
		return err
	}
	return nil
}

// Stats возвращает количество ссылок и владельцев по глобальным индексам
func (r *Links) Stats(ctx context.Context) (models.Stats, error) {
	slugs, err := r.store.SMembers(ctx, allSlugsKey)
	if err != nil {
		return models.Stats{}, err
	}
	owners, err := r.store.SMembers(ctx, allOwnersKey)
	if err != nil {
		return models.Stats{}, err
	}
	return models.Stats{Links: len(slugs), Owners: len(owners)}, nil
}

// decodeRecord разбирает JSON записи. Старые записи без поля slug
// восстанавливают его из ключа хранилища.
func decodeRecord(slug, raw string) (models.LinkRecord, error) {
	var rec models.LinkRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.LinkRecord{}, err
	}
	if rec.Slug == "" {
		rec.Slug = slug
	}
	return rec, nil
}
