// Package grpc содержит интерцепторы для gRPC сервера
package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/morozovn/slugmap/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// contextKey определяет тип для ключей контекста
type contextKey string

const userIDKey contextKey = "userID"

// publicMethods не требуют аутентификации
var publicMethods = map[string]bool{
	"/slugmap.v1.LinksService/ResolveURL": true,
	"/slugmap.v1.LinksService/Ping":       true,
}

// AuthInterceptor создаёт интерцептор для аутентификации пользователей.
// Валидный bearer-токен даёт существующий UserID, иначе выпускается новый.
func AuthInterceptor(svc *service.Service, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		var userID string
		if authHeaders := md.Get("authorization"); len(authHeaders) > 0 {
			authHeader := authHeaders[0]
			if strings.HasPrefix(authHeader, "Bearer ") {
				token := strings.TrimPrefix(authHeader, "Bearer ")
				parsed, err := svc.ParseJWT(token)
				if err != nil {
					logger.Warn("Invalid JWT token", zap.Error(err))
				} else {
					userID = parsed
				}
			}
		}

		if userID == "" {
			userID = svc.GenerateUserID()
			token, err := svc.GenerateJWT(userID)
			if err != nil {
				logger.Error("Failed to generate JWT", zap.Error(err))
				return nil, status.Error(codes.Internal, "failed to issue token")
			}
			// Отдаём свежий токен клиенту в заголовках ответа
			if err := grpc.SetHeader(ctx, metadata.Pairs("authorization", "Bearer "+token)); err != nil {
				logger.Warn("Failed to set auth header", zap.Error(err))
			}
		}

		return handler(withUserID(ctx, userID), req)
	}
}

// LoggingInterceptor создаёт интерцептор для логирования вызовов
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			code = status.Code(err)
		}
		logger.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// withUserID сохраняет UserID в контексте
func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// getUserIDFromContext возвращает UserID из контекста вызова
func getUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", status.Error(codes.Unauthenticated, "missing user ID")
	}
	return userID, nil
}
