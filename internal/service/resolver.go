package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/morozovn/slugmap/internal/models"
	"github.com/morozovn/slugmap/internal/repository"
	"go.uber.org/zap"
)

// ResolveAndRecord разрешает слаг в целевой URL и учитывает переход.
// Запись аналитики выполняется по принципу best-effort: её сбой логируется
// и не влияет на результат редиректа.
func (s *Service) ResolveAndRecord(ctx context.Context, slug string, meta models.ClickMeta) (string, error) {
	slug = NormalizeSlug(slug)

	rec, err := s.links.Get(ctx, slug)
	if err != nil {
		return "", err
	}

	s.recordClick(ctx, slug, meta)
	return rec.LongURL, nil
}

// recordClick увеличивает счётчик переходов и добавляет событие в журнал
func (s *Service) recordClick(ctx context.Context, slug string, meta models.ClickMeta) {
	if _, err := s.store.Incr(ctx, repository.ClicksKey(slug)); err != nil {
		s.logger.Error("Failed to increment click counter", zap.String("slug", slug), zap.Error(err))
	}

	event := models.ClickEvent{
		Timestamp: time.Now().UnixMilli(),
		IP:        meta.IP,
		Referrer:  meta.Referrer,
		UserAgent: meta.UserAgent,
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal click event", zap.String("slug", slug), zap.Error(err))
		return
	}
	if _, err := s.store.LPush(ctx, repository.LogsKey(slug), string(data)); err != nil {
		s.logger.Error("Failed to append click log", zap.String("slug", slug), zap.Error(err))
	}
}

// ClickCounts возвращает счётчики переходов для слагов одним батч-запросом.
// Отсутствующий счётчик означает ноль переходов, а не ошибку.
func (s *Service) ClickCounts(ctx context.Context, slugs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return counts, nil
	}

	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = repository.ClicksKey(NormalizeSlug(slug))
	}

	results, err := s.store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		if res.Err != nil {
			counts[slugs[i]] = 0
			continue
		}
		value, err := strconv.ParseInt(res.Value, 10, 64)
		if err != nil {
			counts[slugs[i]] = 0
			continue
		}
		counts[slugs[i]] = value
	}
	return counts, nil
}
