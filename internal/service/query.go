package service

import (
	"context"
	"sort"
	"strings"

	"github.com/morozovn/slugmap/internal/models"
)

// Поля и направления сортировки списка ссылок
const (
	SortBySlug = "slug"
	// SortByURL и SortByLongURL — синонимы: краткая форма для query-параметров,
	// полная совпадает с именем поля записи
	SortByURL     = "url"
	SortByLongURL = "longUrl"
	SortByClicks  = "clicks"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Границы пагинации
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ListLinks возвращает страницу ссылок владельца с поиском и сортировкой.
// Total считается после фильтрации, до нарезки страницы.
func (s *Service) ListLinks(ctx context.Context, ownerID string, params models.ListParams) (models.ListResult, error) {
	slugs, err := s.links.SlugsByOwner(ctx, ownerID)
	if err != nil {
		return models.ListResult{}, err
	}

	records, err := s.links.Records(ctx, slugs)
	if err != nil {
		return models.ListResult{}, err
	}

	filtered := filterRecords(records, params.Search)

	if err := s.sortRecords(ctx, filtered, params.SortBy, params.SortDir); err != nil {
		return models.ListResult{}, err
	}

	total := len(filtered)
	page := paginate(filtered, params.Page, params.PerPage)

	return models.ListResult{Links: page, Total: total}, nil
}

// filterRecords оставляет записи, в слаге или URL которых есть искомая подстрока
func filterRecords(records []models.LinkRecord, search string) []models.LinkRecord {
	if search == "" {
		return records
	}
	needle := strings.ToLower(search)
	filtered := records[:0:0]
	for _, rec := range records {
		if strings.Contains(rec.Slug, needle) || strings.Contains(strings.ToLower(rec.LongURL), needle) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// sortRecords упорядочивает записи по указанному полю. Без поля сортировки
// порядок — обратный порядку перечисления индекса, что приближает
// "сначала новые", так как индекс не хранит время создания.
func (s *Service) sortRecords(ctx context.Context, records []models.LinkRecord, sortBy, sortDir string) error {
	desc := sortDir == SortDesc

	switch sortBy {
	case "":
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	case SortBySlug:
		// Слаги хранятся в нижнем регистре, сравнение уже регистронезависимое
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return records[i].Slug > records[j].Slug
			}
			return records[i].Slug < records[j].Slug
		})
	case SortByURL, SortByLongURL:
		sort.SliceStable(records, func(i, j int) bool {
			a, b := strings.ToLower(records[i].LongURL), strings.ToLower(records[j].LongURL)
			if desc {
				return a > b
			}
			return a < b
		})
	case SortByClicks:
		slugs := make([]string, len(records))
		for i, rec := range records {
			slugs[i] = rec.Slug
		}
		counts, err := s.ClickCounts(ctx, slugs)
		if err != nil {
			return err
		}
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return counts[records[i].Slug] > counts[records[j].Slug]
			}
			return counts[records[i].Slug] < counts[records[j].Slug]
		})
	}
	return nil
}

// paginate возвращает элементы страницы, ограничивая perPage сверху.
// Страница за пределами диапазона даёт пустой срез, а не ошибку.
func paginate(records []models.LinkRecord, page, perPage int) []models.LinkRecord {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	start := (page - 1) * perPage
	if start >= len(records) {
		return []models.LinkRecord{}
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
