// Package service реализует логику работы с короткими ссылками:
// создание, изменение, удаление, выборку, разрешение слага и учёт переходов.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/morozovn/slugmap/internal/kvstore"
	"github.com/morozovn/slugmap/internal/models"
	"github.com/morozovn/slugmap/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrUniqueSlugFailed возвращается, когда не удалось подобрать свободный слаг
	ErrUniqueSlugFailed = errors.New("failed to generate unique slug")
	// ErrInvalidToken возвращается при разборе некорректного JWT
	ErrInvalidToken = errors.New("invalid token")
)

// maxSlugAttempts ограничивает повторные попытки при коллизии сгенерированного слага
const maxSlugAttempts = 5

// tokenTTL задаёт срок жизни JWT
const tokenTTL = 24 * time.Hour

// Service реализует логику сервиса коротких ссылок
type Service struct {
	links      *repository.Links
	store      kvstore.Store
	jwtSecret  string
	slugLength int
	logger     *zap.Logger
}

// NewService создаёт новый экземпляр Service
func NewService(links *repository.Links, store kvstore.Store, jwtSecret string, slugLength int, logger *zap.Logger) *Service {
	return &Service{
		links:      links,
		store:      store,
		jwtSecret:  jwtSecret,
		slugLength: slugLength,
		logger:     logger,
	}
}

// CreateLink создаёт короткую ссылку. Пользовательский слаг нормализуется и
// проверяется; при занятом слаге возвращается repository.ErrSlugExists.
// Для сгенерированных слагов коллизия разрешается повторной генерацией.
func (s *Service) CreateLink(ctx context.Context, ownerID, longURL, customSlug string) (models.LinkRecord, error) {
	if err := ValidateLongURL(longURL); err != nil {
		return models.LinkRecord{}, err
	}

	if customSlug != "" {
		slug := NormalizeSlug(customSlug)
		if err := ValidateSlug(slug); err != nil {
			return models.LinkRecord{}, err
		}
		rec := models.LinkRecord{
			Slug:       slug,
			LongURL:    longURL,
			InternalID: s.GenerateInternalID(),
			OwnerID:    ownerID,
		}
		if err := s.links.Create(ctx, rec); err != nil {
			return models.LinkRecord{}, err
		}
		return rec, nil
	}

	for i := 0; i < maxSlugAttempts; i++ {
		slug, err := GenerateSlug(s.slugLength)
		if err != nil {
			return models.LinkRecord{}, err
		}
		rec := models.LinkRecord{
			Slug:       slug,
			LongURL:    longURL,
			InternalID: s.GenerateInternalID(),
			OwnerID:    ownerID,
		}
		err = s.links.Create(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, repository.ErrSlugExists) {
			return models.LinkRecord{}, err
		}
	}
	return models.LinkRecord{}, ErrUniqueSlugFailed
}

// UpdateLink заменяет целевой URL ссылки, найденной по внутреннему идентификатору
func (s *Service) UpdateLink(ctx context.Context, ownerID, internalID, longURL string) (models.LinkRecord, error) {
	if err := ValidateLongURL(longURL); err != nil {
		return models.LinkRecord{}, err
	}
	return s.links.UpdateLongURL(ctx, ownerID, internalID, longURL)
}

// DeleteLink удаляет ссылку владельца по внутреннему идентификатору
func (s *Service) DeleteLink(ctx context.Context, ownerID, internalID string) error {
	return s.links.Delete(ctx, ownerID, internalID)
}

// Stats возвращает статистику сервиса
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return s.links.Stats(ctx)
}

// GenerateInternalID генерирует стабильный непрозрачный идентификатор записи
func (s *Service) GenerateInternalID() string {
	return uuid.NewString()
}

// GenerateUserID генерирует идентификатор нового пользователя
func (s *Service) GenerateUserID() string {
	return uuid.NewString()
}

// Claims описывает полезную нагрузку JWT с идентификатором пользователя
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateJWT создаёт подписанный токен для пользователя
func (s *Service) GenerateJWT(userID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseJWT проверяет токен и возвращает идентификатор пользователя
func (s *Service) ParseJWT(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
