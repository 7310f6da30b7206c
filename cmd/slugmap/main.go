package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/morozovn/slugmap/internal/app"
	"github.com/morozovn/slugmap/internal/config"
	grpcserver "github.com/morozovn/slugmap/internal/grpc"
	"github.com/morozovn/slugmap/internal/grpc/proto"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/log"
	"github.com/morozovn/slugmap/internal/middleware"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/morozovn/slugmap/internal/service"
)

// shutdownTimeout ограничивает время graceful shutdown HTTP-сервера
const shutdownTimeout = 30 * time.Second

func main() {
	// Получаем конфигурацию
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}

	logger := log.NewLogger(cfg.LogLevel)
	defer func() {
		_ = logger.Sync()
	}()

	// Выбираем хранилище: PostgreSQL > Redis > файл > память
	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", zap.Error(err))
		}
	}()

	links := repository.NewLinks(store, logger)
	svc := service.NewService(links, store, cfg.JWTSecret, cfg.SlugLength, logger)
	appInstance := app.NewApp(svc, store, logger)

	// Создаём маршрутизатор
	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.GzipMiddleware)
	r.Use(middleware.AuthMiddleware(svc, cfg.CookieTTL, logger))

	// Регистрируем обработчики
	r.Post("/api/links", appInstance.HandleCreateLink)
	r.Get("/api/links", appInstance.HandleListLinks)
	r.Put("/api/links/{internalID}", appInstance.HandleUpdateLink)
	r.Delete("/api/links/{internalID}", appInstance.HandleDeleteLink)
	r.Get("/api/analytics/counts", appInstance.HandleClickCounts)
	r.Route("/api/internal", func(r chi.Router) {
		r.Use(middleware.TrustedSubnetMiddleware(cfg.TrustedSubnet, logger))
		r.Get("/stats", appInstance.HandleStats)
	})
	r.Get("/ping", appInstance.HandlePing)
	r.Get("/{slug}", appInstance.HandleRedirect)

	server := &http.Server{
		Addr:    cfg.RunAddr,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.RunAddr))
		serverErr <- server.ListenAndServe()
	}()

	// Запускаем gRPC сервер, если настроен адрес
	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("Failed to listen gRPC address", zap.Error(err))
		}
		grpcSrv = grpc.NewServer(grpc.ChainUnaryInterceptor(
			grpcserver.LoggingInterceptor(logger),
			grpcserver.AuthInterceptor(svc, logger),
		))
		proto.RegisterLinksServiceServer(grpcSrv, grpcserver.NewServer(svc, store, logger))
		go func() {
			logger.Info("gRPC server starting", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(listener); err != nil {
				logger.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Fatal("HTTP server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Error("Forced shutdown failed", zap.Error(err))
			}
		}
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		logger.Info("Server stopped")
	}
}

// newStore создаёт хранилище согласно конфигурации
func newStore(cfg *config.Config, logger *zap.Logger) (kvstore.Store, error) {
	switch {
	case cfg.DatabaseDSN != "":
		logger.Info("Using PostgreSQL store")
		return kvstore.NewPostgresStore(cfg.DatabaseDSN, logger)
	case cfg.RedisAddr != "":
		logger.Info("Using Redis store", zap.String("addr", cfg.RedisAddr))
		return kvstore.NewRedisStore(cfg.RedisAddr, "", 0)
	case cfg.FileStoragePath != "":
		logger.Info("Using file store", zap.String("path", cfg.FileStoragePath))
		return kvstore.NewFileStore(cfg.FileStoragePath, logger)
	default:
		logger.Info("Using in-memory store")
		return kvstore.NewMemoryStore(), nil
	}
}
