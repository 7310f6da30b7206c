// Package app содержит HTTP-обработчики сервиса коротких ссылок.
package app

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/middleware"
	"github.com/morozovn/slugmap/internal/models"
	"github.com/morozovn/slugmap/internal/repository"
	"github.com/morozovn/slugmap/internal/service"
	"go.uber.org/zap"
)

// CreateLinkRequest описывает тело запроса на создание ссылки
type CreateLinkRequest struct {
	LongURL    string `json:"longUrl"`
	CustomSlug string `json:"customSlug,omitempty"`
}

// UpdateLinkRequest описывает тело запроса на изменение ссылки
type UpdateLinkRequest struct {
	LongURL string `json:"longUrl"`
}

// ClickCountsResponse описывает ответ со счётчиками переходов
type ClickCountsResponse struct {
	ClickCounts map[string]int64 `json:"clickCounts"`
}

// ErrorResponse описывает тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// App содержит хендлеры и зависимости
type App struct {
	svc    *service.Service
	store  kvstore.Store
	logger *zap.Logger
}

// NewApp создаёт новое приложение
func NewApp(svc *service.Service, store kvstore.Store, logger *zap.Logger) *App {
	return &App{svc: svc, store: store, logger: logger}
}

// writeJSON сериализует ответ с указанным статусом
func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeError сериализует ошибку в JSON-ответ
func (a *App) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, ErrorResponse{Error: message})
}

// HandleCreateLink обрабатывает POST-запросы на "/api/links"
func (a *App) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	rec, err := a.svc.CreateLink(r.Context(), userID, req.LongURL, req.CustomSlug)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			a.writeError(w, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, repository.ErrSlugExists):
			a.writeError(w, http.StatusConflict, "Slug already exists")
		default:
			a.logger.Error("Failed to create link", zap.Error(err))
			a.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	a.writeJSON(w, http.StatusCreated, rec)
}

// HandleListLinks обрабатывает GET-запросы на "/api/links"
func (a *App) HandleListLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	params := models.ListParams{
		Search:  query.Get("q"),
		SortBy:  query.Get("sort"),
		SortDir: query.Get("order"),
		Page:    intParam(query.Get("page"), 1),
		PerPage: intParam(query.Get("perPage"), service.DefaultPerPage),
	}

	result, err := a.svc.ListLinks(r.Context(), userID, params)
	if err != nil {
		a.logger.Error("Failed to list links", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, result)
}

// HandleUpdateLink обрабатывает PUT-запросы на "/api/links/{internalID}"
func (a *App) HandleUpdateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	internalID := chi.URLParam(r, "internalID")
	if internalID == "" {
		a.writeError(w, http.StatusBadRequest, "Missing internal ID")
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	rec, err := a.svc.UpdateLink(r.Context(), userID, internalID, req.LongURL)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			a.writeError(w, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, repository.ErrLinkNotFound):
			a.writeError(w, http.StatusNotFound, "Link not found")
		default:
			a.logger.Error("Failed to update link", zap.Error(err))
			a.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	a.writeJSON(w, http.StatusOK, rec)
}

// HandleDeleteLink обрабатывает DELETE-запросы на "/api/links/{internalID}"
func (a *App) HandleDeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	internalID := chi.URLParam(r, "internalID")
	if internalID == "" {
		a.writeError(w, http.StatusBadRequest, "Missing internal ID")
		return
	}

	if err := a.svc.DeleteLink(r.Context(), userID, internalID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			a.writeError(w, http.StatusNotFound, "Link not found")
			return
		}
		a.logger.Error("Failed to delete link", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleClickCounts обрабатывает GET-запросы на "/api/analytics/counts"
func (a *App) HandleClickCounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		a.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	slugs := r.URL.Query()["slugs"]
	if len(slugs) == 0 {
		a.writeError(w, http.StatusBadRequest, "Slugs parameter required")
		return
	}

	counts, err := a.svc.ClickCounts(r.Context(), slugs)
	if err != nil {
		a.logger.Error("Failed to fetch click counts", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, ClickCountsResponse{ClickCounts: counts})
}

// HandleRedirect обрабатывает GET-запросы на "/{slug}"
func (a *App) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		http.Error(w, "Missing slug", http.StatusBadRequest)
		return
	}

	meta := models.ClickMeta{
		IP:        clientIP(r),
		Referrer:  r.Header.Get("Referer"),
		UserAgent: r.Header.Get("User-Agent"),
	}

	longURL, err := a.svc.ResolveAndRecord(r.Context(), slug, meta)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			http.Error(w, "Link not found", http.StatusNotFound)
			return
		}
		a.logger.Error("Failed to resolve slug", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", longURL)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

// HandlePing обрабатывает GET-запросы на "/ping"
func (a *App) HandlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if a.store == nil {
		http.Error(w, "Store not configured", http.StatusInternalServerError)
		return
	}
	if err := a.store.Ping(r.Context()); err != nil {
		http.Error(w, "Store connection failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleStats обрабатывает GET-запросы на "/api/internal/stats"
func (a *App) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	stats, err := a.svc.Stats(r.Context())
	if err != nil {
		a.logger.Error("Failed to fetch stats", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, stats)
}

// intParam разбирает числовой параметр запроса со значением по умолчанию
func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// clientIP возвращает адрес клиента из X-Forwarded-For или RemoteAddr
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
