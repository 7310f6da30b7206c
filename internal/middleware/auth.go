// Package middleware содержит HTTP middleware для обработки запросов.
// Включает аутентификацию, логирование, сжатие ответов и проверку доверенных подсетей.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/morozovn/slugmap/internal/service"
	"go.uber.org/zap"
)

// UserIDKey для хранения UserID в контексте
type UserIDKey struct{}

// jwtCookieName — имя куки с токеном аутентификации
const jwtCookieName = "jwt_token"

// AuthMiddleware извлекает UserID из куки с JWT. Если валидного токена нет,
// выпускает новый UserID и куку — анонимный посетитель получает стабильную
// идентичность, которой принадлежат созданные им ссылки.
func AuthMiddleware(svc *service.Service, cookieTTL time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string

			// Проверяем UserID из контекста (для тестов и внутренних вызовов)
			if id, ok := r.Context().Value(UserIDKey{}).(string); ok && id != "" {
				next.ServeHTTP(w, r)
				return
			}

			// Проверяем куку с JWT
			if cookie, err := r.Cookie(jwtCookieName); err == nil && cookie != nil {
				userID, err = svc.ParseJWT(cookie.Value)
				if err != nil {
					logger.Warn("Invalid JWT token", zap.Error(err))
					userID = ""
				}
			}

			// Если userID не установлен, генерируем новый и выдаём куку
			if userID == "" {
				userID = svc.GenerateUserID()
				token, err := svc.GenerateJWT(userID)
				if err != nil {
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     jwtCookieName,
					Value:    token,
					Expires:  time.Now().Add(cookieTTL),
					Path:     "/",
					HttpOnly: true,
				})
			}

			ctx := context.WithValue(r.Context(), UserIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID возвращает UserID из контекста запроса
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey{}).(string)
	return userID, ok && userID != ""
}
