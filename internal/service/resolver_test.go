package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/models"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_ResolveAndRecord(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.CreateLink(ctx, "owner-1", "https://example.com/target", "mycustomslug")
	require.NoError(t, err)

	// Слаг разрешается независимо от регистра запроса
	longURL, err := svc.ResolveAndRecord(ctx, "MYCUSTOMSLUG", models.ClickMeta{
		IP:        "203.0.113.7",
		Referrer:  "https://referrer.example",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/target", longURL)

	// Переход учтён в счётчике
	count, err := store.Get(ctx, repository.ClicksKey("mycustomslug"))
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	// Событие перехода записано в журнал с метаданными
	events, err := store.LRange(ctx, repository.LogsKey("mycustomslug"))
	require.NoError(t, err)
	require.Len(t, events, 1)

	var event models.ClickEvent
	require.NoError(t, json.Unmarshal([]byte(events[0]), &event))
	assert.Equal(t, "203.0.113.7", event.IP)
	assert.Equal(t, "https://referrer.example", event.Referrer)
	assert.Equal(t, "test-agent", event.UserAgent)
	assert.NotZero(t, event.Timestamp)
}

func TestService_ResolveAndRecord_NotFound(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveAndRecord(ctx, "missing", models.ClickMeta{})
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	// Для несуществующего слага переход не учитывается
	_, err = store.Get(ctx, repository.ClicksKey("missing"))
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestService_ResolveAndRecord_AnalyticsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := kvstore.NewMockStore(ctrl)
	links := repository.NewLinks(store, zap.NewNop())
	svc := NewService(links, store, "test_secret", 8, zap.NewNop())

	record := `{"slug":"abcd","longUrl":"https://example.com","internalId":"id-1","ownerId":"owner-1"}`
	store.EXPECT().Get(gomock.Any(), repository.URLKey("abcd")).Return(record, nil)
	// Сбой аналитики не должен ломать редирект
	store.EXPECT().Incr(gomock.Any(), repository.ClicksKey("abcd")).Return(int64(0), errors.New("store down"))
	store.EXPECT().LPush(gomock.Any(), repository.LogsKey("abcd"), gomock.Any()).Return(int64(0), errors.New("store down"))

	longURL, err := svc.ResolveAndRecord(context.Background(), "abcd", models.ClickMeta{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", longURL)
}

func TestService_ClickCounts(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Incr(ctx, repository.ClicksKey("counted"))
		require.NoError(t, err)
	}

	// Отсутствующий счётчик означает ноль, регистр слага не важен
	counts, err := svc.ClickCounts(ctx, []string{"Counted", "never-clicked"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts["Counted"])
	assert.Equal(t, int64(0), counts["never-clicked"])
}

func TestService_ClickCounts_Empty(t *testing.T) {
	svc, _ := newTestService()

	counts, err := svc.ClickCounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
