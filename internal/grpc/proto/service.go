// Package proto содержит интерфейс gRPC сервиса коротких ссылок
package proto

import (
	"context"

	"google.golang.org/grpc"
)

// LinksServiceServer представляет интерфейс gRPC сервиса
type LinksServiceServer interface {
	CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error)
	ListLinks(ctx context.Context, req *ListLinksRequest) (*ListLinksResponse, error)
	UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*UpdateLinkResponse, error)
	DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*DeleteLinkResponse, error)
	ResolveURL(ctx context.Context, req *ResolveURLRequest) (*ResolveURLResponse, error)
	GetClickCounts(ctx context.Context, req *GetClickCountsRequest) (*GetClickCountsResponse, error)
	GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// UnimplementedLinksServiceServer предоставляет базовую реализацию интерфейса
type UnimplementedLinksServiceServer struct{}

// CreateLink предоставляет базовую реализацию создания ссылки
func (UnimplementedLinksServiceServer) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	return nil, nil
}

// ListLinks предоставляет базовую реализацию получения списка ссылок
func (UnimplementedLinksServiceServer) ListLinks(ctx context.Context, req *ListLinksRequest) (*ListLinksResponse, error) {
	return nil, nil
}

// UpdateLink предоставляет базовую реализацию изменения ссылки
func (UnimplementedLinksServiceServer) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*UpdateLinkResponse, error) {
	return nil, nil
}

// DeleteLink предоставляет базовую реализацию удаления ссылки
func (UnimplementedLinksServiceServer) DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*DeleteLinkResponse, error) {
	return nil, nil
}

// ResolveURL предоставляет базовую реализацию разрешения слага
func (UnimplementedLinksServiceServer) ResolveURL(ctx context.Context, req *ResolveURLRequest) (*ResolveURLResponse, error) {
	return nil, nil
}

// GetClickCounts предоставляет базовую реализацию получения счётчиков переходов
func (UnimplementedLinksServiceServer) GetClickCounts(ctx context.Context, req *GetClickCountsRequest) (*GetClickCountsResponse, error) {
	return nil, nil
}

// GetStats предоставляет базовую реализацию получения статистики сервиса
func (UnimplementedLinksServiceServer) GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error) {
	return nil, nil
}

// Ping предоставляет базовую реализацию проверки состояния сервиса
func (UnimplementedLinksServiceServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return nil, nil
}

// RegisterLinksServiceServer регистрирует реализацию сервиса в gRPC сервере
func RegisterLinksServiceServer(s *grpc.Server, srv LinksServiceServer) {
	// В реальном проекте это было бы автоматически сгенерировано protoc
	// Здесь заглушка для демонстрации
}
