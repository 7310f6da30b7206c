// Package proto содержит определения типов для gRPC сервиса коротких ссылок
package proto

// Link представляет короткую ссылку в ответах сервиса
type Link struct {
	Slug       string `json:"slug"`
	LongURL    string `json:"long_url"`
	InternalID string `json:"internal_id"`
	OwnerID    string `json:"owner_id"`
}

// CreateLinkRequest представляет запрос на создание короткой ссылки
type CreateLinkRequest struct {
	LongURL    string `json:"long_url"`
	CustomSlug string `json:"custom_slug"`
}

// CreateLinkResponse представляет ответ с созданной ссылкой
type CreateLinkResponse struct {
	Link       *Link `json:"link"`
	SlugExists bool  `json:"slug_exists"`
}

// ListLinksRequest представляет запрос списка ссылок пользователя
type ListLinksRequest struct {
	Search        string `json:"search"`
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`
	Page          int32  `json:"page"`
	PerPage       int32  `json:"per_page"`
}

// ListLinksResponse представляет страницу ссылок пользователя
type ListLinksResponse struct {
	Links []*Link `json:"links"`
	Total int64   `json:"total"`
}

// UpdateLinkRequest представляет запрос на изменение целевого URL
type UpdateLinkRequest struct {
	InternalID string `json:"internal_id"`
	LongURL    string `json:"long_url"`
}

// UpdateLinkResponse представляет ответ с обновлённой ссылкой
type UpdateLinkResponse struct {
	Link *Link `json:"link"`
}

// DeleteLinkRequest представляет запрос на удаление ссылки
type DeleteLinkRequest struct {
	InternalID string `json:"internal_id"`
}

// DeleteLinkResponse представляет ответ на удаление ссылки
type DeleteLinkResponse struct {
	Deleted bool `json:"deleted"`
}

// ResolveURLRequest представляет запрос на разрешение слага
type ResolveURLRequest struct {
	Slug      string `json:"slug"`
	IP        string `json:"ip"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"user_agent"`
}

// ResolveURLResponse представляет ответ с целевым URL
type ResolveURLResponse struct {
	LongURL string `json:"long_url"`
	Found   bool   `json:"found"`
}

// GetClickCountsRequest представляет запрос счётчиков переходов
type GetClickCountsRequest struct {
	Slugs []string `json:"slugs"`
}

// GetClickCountsResponse представляет ответ со счётчиками переходов
type GetClickCountsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

// GetStatsRequest представляет запрос статистики сервиса
type GetStatsRequest struct{}

// GetStatsResponse представляет ответ со статистикой сервиса
type GetStatsResponse struct {
	Links  int64 `json:"links"`
	Owners int64 `json:"owners"`
}

// PingRequest представляет запрос проверки состояния сервиса
type PingRequest struct{}

// PingResponse представляет ответ проверки состояния сервиса
type PingResponse struct {
	Ok bool `json:"ok"`
}
