package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/models"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestService создаёт сервис поверх in-memory хранилища
func newTestService() (*Service, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	links := repository.NewLinks(store, zap.NewNop())
	return NewService(links, store, "test_secret", 8, zap.NewNop()), store
}

func TestService_CreateLink_Generated(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateLink(ctx, "owner-1", "https://example.com", "")
	require.NoError(t, err)

	assert.Len(t, rec.Slug, 8)
	assert.NoError(t, ValidateSlug(rec.Slug))
	assert.Equal(t, "https://example.com", rec.LongURL)
	assert.NotEmpty(t, rec.InternalID)
	assert.Equal(t, "owner-1", rec.OwnerID)
}

func TestService_CreateLink_CustomSlug(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Слаг нормализуется перед сохранением
	rec, err := svc.CreateLink(ctx, "owner-1", "https://example.com", "MyCustomSlug")
	require.NoError(t, err)
	assert.Equal(t, "mycustomslug", rec.Slug)

	// Повтор в другом регистре конфликтует с той же записью
	_, err = svc.CreateLink(ctx, "owner-2", "https://other.com", "MYCUSTOMSLUG")
	assert.ErrorIs(t, err, repository.ErrSlugExists)
}

func TestService_CreateLink_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var validationErr *models.ValidationError

	_, err := svc.CreateLink(ctx, "owner-1", "http://insecure.com", "")
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateLink(ctx, "owner-1", "https://example.com", "ab")
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateLink(ctx, "owner-1", "https://example.com", "bad slug!")
	assert.ErrorAs(t, err, &validationErr)
}

func TestService_CreateLink_RetryOnCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := kvstore.NewMockStore(ctrl)
	links := repository.NewLinks(store, zap.NewNop())
	svc := NewService(links, store, "test_secret", 8, zap.NewNop())

	// Первая попытка натыкается на занятый слаг, вторая проходит
	gomock.InOrder(
		store.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil),
		store.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil),
	)
	store.EXPECT().SAdd(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)

	rec, err := svc.CreateLink(context.Background(), "owner-1", "https://example.com", "")
	require.NoError(t, err)
	assert.Len(t, rec.Slug, 8)
}

func TestService_CreateLink_RetryExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := kvstore.NewMockStore(ctrl)
	links := repository.NewLinks(store, zap.NewNop())
	svc := NewService(links, store, "test_secret", 8, zap.NewNop())

	// Все попытки упираются в коллизию
	store.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(5)

	_, err := svc.CreateLink(context.Background(), "owner-1", "https://example.com", "")
	assert.ErrorIs(t, err, ErrUniqueSlugFailed)
}

func TestService_UpdateLink(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateLink(ctx, "owner-1", "https://before.com", "updateme")
	require.NoError(t, err)

	updated, err := svc.UpdateLink(ctx, "owner-1", rec.InternalID, "https://after.com")
	require.NoError(t, err)
	assert.Equal(t, "https://after.com", updated.LongURL)
	assert.Equal(t, rec.Slug, updated.Slug)

	// Невалидный URL отклоняется до обращения к хранилищу
	var validationErr *models.ValidationError
	_, err = svc.UpdateLink(ctx, "owner-1", rec.InternalID, "ftp://example.com")
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.UpdateLink(ctx, "owner-2", rec.InternalID, "https://other.com")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestService_DeleteLink(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateLink(ctx, "owner-1", "https://example.com", "deleteme")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLink(ctx, "owner-1", rec.InternalID))
	assert.ErrorIs(t, svc.DeleteLink(ctx, "owner-1", rec.InternalID), repository.ErrLinkNotFound)
}

func TestService_Stats(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateLink(ctx, "owner-1", "https://a.com", "")
	require.NoError(t, err)
	_, err = svc.CreateLink(ctx, "owner-2", "https://b.com", "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Links: 2, Owners: 2}, stats)
}

func TestService_JWT(t *testing.T) {
	svc, _ := newTestService()

	userID := svc.GenerateUserID()
	token, err := svc.GenerateJWT(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := svc.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestService_ParseJWT_Invalid(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ParseJWT("not.a.token")
	assert.Error(t, err)

	// Токен, подписанный другим секретом
	other := NewService(nil, nil, "other_secret", 8, zap.NewNop())
	token, err := other.GenerateJWT("user-1")
	require.NoError(t, err)
	_, err = svc.ParseJWT(token)
	assert.Error(t, err)
}

func TestService_GenerateInternalID(t *testing.T) {
	svc, _ := newTestService()

	first := svc.GenerateInternalID()
	second := svc.GenerateInternalID()
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
