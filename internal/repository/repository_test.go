package repository

import (
	"context"
	"testing"

	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestLinks создаёт репозиторий поверх in-memory хранилища
func newTestLinks() (*Links, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	return NewLinks(store, zap.NewNop()), store
}

func TestLinks_CreateAndGet(t *testing.T) {
	links, _ := newTestLinks()
	ctx := context.Background()

	rec := models.LinkRecord{
		Slug:       "myslug",
		LongURL:    "https://example.com",
		InternalID: "id-1",
		OwnerID:    "owner-1",
	}
	require.NoError(t, links.Create(ctx, rec))

	got, err := links.Get(ctx, "myslug")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	slugs, err := links.SlugsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"myslug"}, slugs)
}

func TestLinks_CreateConflict(t *testing.T) {
	links, _ := newTestLinks()
	ctx := context.Background()

	first := models.LinkRecord{Slug: "taken", LongURL: "https://a.com", InternalID: "id-1", OwnerID: "owner-1"}
	require.NoError(t, links.Create(ctx, first))

	// Слаг занят, даже если претендует другой владелец
	second := models.LinkRecord{Slug: "taken", LongURL: "https://b.com", InternalID: "id-2", OwnerID: "owner-2"}
	err := links.Create(ctx, second)
	assert.ErrorIs(t, err, ErrSlugExists)

	// Запись первого владельца не затёрта
	got, err := links.Get(ctx, "taken")
	require.NoError(t, err)
	assert.Equal(t, "https://a.com", got.LongURL)
	assert.Equal(t, "owner-1", got.OwnerID)
}

func TestLinks_GetNotFound(t *testing.T) {
	links, _ := newTestLinks()

	_, err := links.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestLinks_LegacyRecordWithoutSlug(t *testing.T) {
	links, store := newTestLinks()
	ctx := context.Background()

	// Старая запись без поля slug: он восстанавливается из ключа
	require.NoError(t, store.Set(ctx, URLKey("legacy"),
		`{"longUrl":"https://old.example.com","internalId":"id-legacy","ownerId":"owner-1"}`))

	got, err := links.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.Slug)
	assert.Equal(t, "https://old.example.com", got.LongURL)
}

func TestLinks_Records(t *testing.T) {
	links, store := newTestLinks()
	ctx := context.Background()

	for _, slug := range []string{"aaaa", "bbbb"} {
		require.NoError(t, links.Create(ctx, models.LinkRecord{
			Slug:       slug,
			LongURL:    "https://example.com/" + slug,
			InternalID: "id-" + slug,
			OwnerID:    "owner-1",
		}))
	}
	// Некорректная запись пропускается, а не роняет выборку
	require.NoError(t, store.Set(ctx, URLKey("broken"), "not json"))

	records, err := links.Records(ctx, []string{"aaaa", "missing", "broken", "bbbb"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "aaaa", records[0].Slug)
	assert.Equal(t, "bbbb", records[1].Slug)
}

func TestLinks_FindByInternalID(t *testing.T) {
	links, _ := newTestLinks()
	ctx := context.Background()

	rec := models.LinkRecord{Slug: "find", LongURL: "https://example.com", InternalID: "id-42", OwnerID: "owner-1"}
	require.NoError(t, links.Create(ctx, rec))

	got, err := links.FindByInternalID(ctx, "owner-1", "id-42")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Чужой владелец не видит запись
	_, err = links.FindByInternalID(ctx, "owner-2", "id-42")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = links.FindByInternalID(ctx, "owner-1", "unknown")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestLinks_UpdateLongURL(t *testing.T) {
	links, _ := newTestLinks()
	ctx := context.Background()

	rec := models.LinkRecord{Slug: "upd", LongURL: "https://before.com", InternalID: "id-1", OwnerID: "owner-1"}
	require.NoError(t, links.Create(ctx, rec))

	updated, err := links.UpdateLongURL(ctx, "owner-1", "id-1", "https://after.com")
	require.NoError(t, err)

	// Меняется только целевой URL
	assert.Equal(t, "https://after.com", updated.LongURL)
	assert.Equal(t, "upd", updated.Slug)
	assert.Equal(t, "id-1", updated.InternalID)
	assert.Equal(t, "owner-1", updated.OwnerID)

	got, err := links.Get(ctx, "upd")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestLinks_Delete(t *testing.T) {
	links, _ := newTestLinks()
	ctx := context.Background()

	rec := models.LinkRecord{Slug: "gone", LongURL: "https://example.com", InternalID: "id-1", OwnerID: "owner-1"}
	require.NoError(t, links.Create(ctx, rec))

	require.NoError(t, links.Delete(ctx, "owner-1", "id-1"))

	_, err := links.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	slugs, err := links.SlugsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, slugs)

	// Повторное удаление — ссылка уже не найдена
	err = links.Delete(ctx, "owner-1", "id-1")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestLinks_DeleteKeepsAnalytics(t *testing.T) {
	links, store := newTestLinks()
	ctx := context.Background()

	rec := models.LinkRecord{Slug: "clicked", LongURL: "https://example.com", InternalID: "id-1", OwnerID: "owner-1"}
	require.NoError(t, links.Create(ctx, rec))
	_, err := store.Incr(ctx, ClicksKey("clicked"))
	require.NoError(t, err)

	require.NoError(t, links.Delete(ctx, "owner-1", "id-1"))

	// Счётчик переходов переживает удаление ссылки
	count, err := store.Get(ctx, ClicksKey("clicked"))
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}

func TestLinks_Stats(t *testing.T) {
	links, _ := newTestLinks()
	ctx := context.Background()

	stats, err := links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)

	require.NoError(t, links.Create(ctx, models.LinkRecord{Slug: "s1", LongURL: "https://a.com", InternalID: "i1", OwnerID: "o1"}))
	require.NoError(t, links.Create(ctx, models.LinkRecord{Slug: "s2", LongURL: "https://b.com", InternalID: "i2", OwnerID: "o1"}))
	require.NoError(t, links.Create(ctx, models.LinkRecord{Slug: "s3", LongURL: "https://c.com", InternalID: "i3", OwnerID: "o2"}))

	stats, err = links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Links: 3, Owners: 2}, stats)
}
