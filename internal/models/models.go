// Package models содержит модели данных сервиса коротких ссылок.
package models

// LinkRecord представляет сохранённую короткую ссылку.
// Поле Slug может отсутствовать в старых записях и восстанавливается из ключа хранилища.
type LinkRecord struct {
	Slug       string `json:"slug,omitempty"`
	LongURL    string `json:"longUrl"`
	InternalID string `json:"internalId"`
	OwnerID    string `json:"ownerId"`
}

// ClickEvent представляет одно событие перехода по короткой ссылке
type ClickEvent struct {
	Timestamp int64  `json:"timestamp"`
	IP        string `json:"ip"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"userAgent"`
}

// ClickMeta содержит метаданные запроса для журнала переходов
type ClickMeta struct {
	IP        string
	Referrer  string
	UserAgent string
}

// ListParams задаёт параметры поиска, сортировки и пагинации списка ссылок
type ListParams struct {
	Search  string
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

// ListResult содержит страницу ссылок и общее количество после фильтрации
type ListResult struct {
	Links []LinkRecord `json:"links"`
	Total int          `json:"total"`
}

// Stats содержит статистику сервиса
type Stats struct {
	Links  int `json:"links"`
	Owners int `json:"owners"`
}

// ValidationError описывает ошибку валидации с привязкой к полю
type ValidationError struct {
	Field   string
	Message string
}

// Error возвращает текст ошибки валидации
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError создаёт ошибку валидации для указанного поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
