package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/morozovn/slugmap/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newAuthService создаёт сервис для проверки middleware аутентификации
func newAuthService() *service.Service {
	store := kvstore.NewMemoryStore()
	links := repository.NewLinks(store, zap.NewNop())
	return service.NewService(links, store, "test_secret", 8, zap.NewNop())
}

func TestAuthMiddleware_IssuesCookie(t *testing.T) {
	svc := newAuthService()

	var gotUserID string
	handler := AuthMiddleware(svc, time.Hour, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = GetUserID(r)
		}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/links", nil))

	// Анонимный посетитель получает идентичность и куку с токеном
	require.NotEmpty(t, gotUserID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt_token", cookies[0].Name)

	parsed, err := svc.ParseJWT(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, gotUserID, parsed)
}

func TestAuthMiddleware_ReusesValidCookie(t *testing.T) {
	svc := newAuthService()

	token, err := svc.GenerateJWT("existing-user")
	require.NoError(t, err)

	var gotUserID string
	handler := AuthMiddleware(svc, time.Hour, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = GetUserID(r)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "existing-user", gotUserID)
	// Новая кука не выдаётся
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthMiddleware_InvalidCookie(t *testing.T) {
	svc := newAuthService()

	var gotUserID string
	handler := AuthMiddleware(svc, time.Hour, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, _ = GetUserID(r)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: "garbage"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// Невалидный токен заменяется новой идентичностью
	require.NotEmpty(t, gotUserID)
	require.Len(t, w.Result().Cookies(), 1)
}

func TestAuthMiddleware_ContextPassthrough(t *testing.T) {
	svc := newAuthService()

	var gotUserID string
	var gotOK bool
	handler := AuthMiddleware(svc, time.Hour, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, gotOK = GetUserID(r)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey{}, "preset-user"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, gotOK)
	assert.Equal(t, "preset-user", gotUserID)
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)
}
