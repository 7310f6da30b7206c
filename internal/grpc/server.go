// Package grpc содержит реализацию gRPC сервера для сервиса коротких ссылок
package grpc

import (
	"context"
	"errors"

	"github.com/morozovn/slugmap/internal/grpc/proto"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/models"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/morozovn/slugmap/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server реализует gRPC сервер для сервиса коротких ссылок
type Server struct {
	proto.UnimplementedLinksServiceServer
	svc    *service.Service
	store  kvstore.Store
	logger *zap.Logger
}

// NewServer создаёт новый gRPC сервер
func NewServer(svc *service.Service, store kvstore.Store, logger *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		store:  store,
		logger: logger,
	}
}

// CreateLink обрабатывает создание короткой ссылки
func (s *Server) CreateLink(ctx context.Context, req *proto.CreateLinkRequest) (*proto.CreateLinkResponse, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.svc.CreateLink(ctx, userID, req.LongURL, req.CustomSlug)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return &proto.CreateLinkResponse{SlugExists: true}, nil
		}
		return nil, s.mapError(err)
	}

	return &proto.CreateLinkResponse{Link: toProtoLink(rec)}, nil
}

// ListLinks обрабатывает получение списка ссылок пользователя
func (s *Server) ListLinks(ctx context.Context, req *proto.ListLinksRequest) (*proto.ListLinksResponse, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.svc.ListLinks(ctx, userID, models.ListParams{
		Search:  req.Search,
		SortBy:  req.SortBy,
		SortDir: req.SortDirection,
		Page:    int(req.Page),
		PerPage: int(req.PerPage),
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	links := make([]*proto.Link, len(result.Links))
	for i, rec := range result.Links {
		links[i] = toProtoLink(rec)
	}
	return &proto.ListLinksResponse{Links: links, Total: int64(result.Total)}, nil
}

// UpdateLink обрабатывает изменение целевого URL ссылки
func (s *Server) UpdateLink(ctx context.Context, req *proto.UpdateLinkRequest) (*proto.UpdateLinkResponse, error) {
	if req.InternalID == "" {
		return nil, status.Error(codes.InvalidArgument, "internal ID is required")
	}

	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.svc.UpdateLink(ctx, userID, req.InternalID, req.LongURL)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.UpdateLinkResponse{Link: toProtoLink(rec)}, nil
}

// DeleteLink обрабатывает удаление ссылки
func (s *Server) DeleteLink(ctx context.Context, req *proto.DeleteLinkRequest) (*proto.DeleteLinkResponse, error) {
	if req.InternalID == "" {
		return nil, status.Error(codes.InvalidArgument, "internal ID is required")
	}

	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.svc.DeleteLink(ctx, userID, req.InternalID); err != nil {
		return nil, s.mapError(err)
	}
	return &proto.DeleteLinkResponse{Deleted: true}, nil
}

// ResolveURL обрабатывает разрешение слага в целевой URL
func (s *Server) ResolveURL(ctx context.Context, req *proto.ResolveURLRequest) (*proto.ResolveURLResponse, error) {
	if req.Slug == "" {
		return nil, status.Error(codes.InvalidArgument, "slug is required")
	}

	meta := models.ClickMeta{IP: req.IP, Referrer: req.Referrer, UserAgent: req.UserAgent}
	longURL, err := s.svc.ResolveAndRecord(ctx, req.Slug, meta)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return &proto.ResolveURLResponse{Found: false}, nil
		}
		return nil, s.mapError(err)
	}
	return &proto.ResolveURLResponse{LongURL: longURL, Found: true}, nil
}

// GetClickCounts обрабатывает получение счётчиков переходов
func (s *Server) GetClickCounts(ctx context.Context, req *proto.GetClickCountsRequest) (*proto.GetClickCountsResponse, error) {
	if _, err := getUserIDFromContext(ctx); err != nil {
		return nil, err
	}
	if len(req.Slugs) == 0 {
		return nil, status.Error(codes.InvalidArgument, "slugs are required")
	}

	counts, err := s.svc.ClickCounts(ctx, req.Slugs)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.GetClickCountsResponse{Counts: counts}, nil
}

// GetStats обрабатывает получение статистики сервиса
func (s *Server) GetStats(ctx context.Context, req *proto.GetStatsRequest) (*proto.GetStatsResponse, error) {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.GetStatsResponse{Links: int64(stats.Links), Owners: int64(stats.Owners)}, nil
}

// Ping обрабатывает проверку состояния сервиса
func (s *Server) Ping(ctx context.Context, req *proto.PingRequest) (*proto.PingResponse, error) {
	if err := s.store.Ping(ctx); err != nil {
		return &proto.PingResponse{Ok: false}, nil
	}
	return &proto.PingResponse{Ok: true}, nil
}

// mapError переводит ошибки сервиса в коды gRPC
func (s *Server) mapError(err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Error())
	case errors.Is(err, repository.ErrLinkNotFound):
		return status.Error(codes.NotFound, "link not found")
	case errors.Is(err, repository.ErrSlugExists):
		return status.Error(codes.AlreadyExists, "slug already exists")
	default:
		s.logger.Error("Internal gRPC error", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

// toProtoLink конвертирует запись ссылки в protobuf-представление
func toProtoLink(rec models.LinkRecord) *proto.Link {
	return &proto.Link{
		Slug:       rec.Slug,
		LongURL:    rec.LongURL,
		InternalID: rec.InternalID,
		OwnerID:    rec.OwnerID,
	}
}
