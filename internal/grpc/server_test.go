package grpc

import (
	"context"
	"testing"

	"github.com/morozovn/slugmap/internal/grpc/proto"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/morozovn/slugmap/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// newTestServer собирает gRPC сервер поверх in-memory хранилища
func newTestServer() *Server {
	store := kvstore.NewMemoryStore()
	links := repository.NewLinks(store, zap.NewNop())
	svc := service.NewService(links, store, "test_secret", 8, zap.NewNop())
	return NewServer(svc, store, zap.NewNop())
}

// authCtx возвращает контекст с предустановленным UserID
func authCtx(userID string) context.Context {
	return withUserID(context.Background(), userID)
}

func TestServer_CreateLink(t *testing.T) {
	srv := newTestServer()

	resp, err := srv.CreateLink(authCtx("user-1"), &proto.CreateLinkRequest{
		LongURL:    "https://example.com",
		CustomSlug: "GrpcSlug",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Link)
	assert.Equal(t, "grpcslug", resp.Link.Slug)
	assert.Equal(t, "user-1", resp.Link.OwnerID)
	assert.False(t, resp.SlugExists)

	// Конфликт слага возвращается флагом, а не ошибкой
	resp, err = srv.CreateLink(authCtx("user-2"), &proto.CreateLinkRequest{
		LongURL:    "https://other.com",
		CustomSlug: "grpcslug",
	})
	require.NoError(t, err)
	assert.True(t, resp.SlugExists)
	assert.Nil(t, resp.Link)
}

func TestServer_CreateLink_Unauthenticated(t *testing.T) {
	srv := newTestServer()

	_, err := srv.CreateLink(context.Background(), &proto.CreateLinkRequest{LongURL: "https://example.com"})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_CreateLink_InvalidURL(t *testing.T) {
	srv := newTestServer()

	_, err := srv.CreateLink(authCtx("user-1"), &proto.CreateLinkRequest{LongURL: "http://insecure.com"})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_ListLinks(t *testing.T) {
	srv := newTestServer()
	ctx := authCtx("user-1")

	for _, slug := range []string{"aaaa", "bbbb"} {
		_, err := srv.CreateLink(ctx, &proto.CreateLinkRequest{
			LongURL:    "https://example.com/" + slug,
			CustomSlug: slug,
		})
		require.NoError(t, err)
	}

	resp, err := srv.ListLinks(ctx, &proto.ListLinksRequest{SortBy: "slug", SortDirection: "asc"})
	require.NoError(t, err)
	require.Len(t, resp.Links, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, "aaaa", resp.Links[0].Slug)
}

func TestServer_UpdateAndDeleteLink(t *testing.T) {
	srv := newTestServer()
	ctx := authCtx("user-1")

	created, err := srv.CreateLink(ctx, &proto.CreateLinkRequest{
		LongURL:    "https://before.com",
		CustomSlug: "editgrpc",
	})
	require.NoError(t, err)

	updated, err := srv.UpdateLink(ctx, &proto.UpdateLinkRequest{
		InternalID: created.Link.InternalID,
		LongURL:    "https://after.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://after.com", updated.Link.LongURL)

	// Пустой идентификатор отклоняется
	_, err = srv.UpdateLink(ctx, &proto.UpdateLinkRequest{LongURL: "https://x.com"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	deleted, err := srv.DeleteLink(ctx, &proto.DeleteLinkRequest{InternalID: created.Link.InternalID})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	_, err = srv.DeleteLink(ctx, &proto.DeleteLinkRequest{InternalID: created.Link.InternalID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_ResolveURL(t *testing.T) {
	srv := newTestServer()

	_, err := srv.CreateLink(authCtx("user-1"), &proto.CreateLinkRequest{
		LongURL:    "https://example.com/target",
		CustomSlug: "resolveme",
	})
	require.NoError(t, err)

	// Разрешение не требует аутентификации
	resp, err := srv.ResolveURL(context.Background(), &proto.ResolveURLRequest{
		Slug: "ResolveMe",
		IP:   "203.0.113.7",
	})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "https://example.com/target", resp.LongURL)

	resp, err = srv.ResolveURL(context.Background(), &proto.ResolveURLRequest{Slug: "missing"})
	require.NoError(t, err)
	assert.False(t, resp.Found)

	_, err = srv.ResolveURL(context.Background(), &proto.ResolveURLRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_GetClickCounts(t *testing.T) {
	srv := newTestServer()
	ctx := authCtx("user-1")

	_, err := srv.CreateLink(ctx, &proto.CreateLinkRequest{
		LongURL:    "https://example.com",
		CustomSlug: "counted",
	})
	require.NoError(t, err)

	_, err = srv.ResolveURL(context.Background(), &proto.ResolveURLRequest{Slug: "counted"})
	require.NoError(t, err)

	resp, err := srv.GetClickCounts(ctx, &proto.GetClickCountsRequest{Slugs: []string{"counted", "missing"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Counts["counted"])
	assert.Equal(t, int64(0), resp.Counts["missing"])

	_, err = srv.GetClickCounts(ctx, &proto.GetClickCountsRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_GetStats(t *testing.T) {
	srv := newTestServer()

	_, err := srv.CreateLink(authCtx("user-1"), &proto.CreateLinkRequest{
		LongURL:    "https://example.com",
		CustomSlug: "statone",
	})
	require.NoError(t, err)

	resp, err := srv.GetStats(context.Background(), &proto.GetStatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Links)
	assert.Equal(t, int64(1), resp.Owners)
}

func TestServer_Ping(t *testing.T) {
	srv := newTestServer()

	resp, err := srv.Ping(context.Background(), &proto.PingRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Ok)
}
