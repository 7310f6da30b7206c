package service

import (
	"crypto/rand"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/morozovn/slugmap/internal/models"
)

// Границы длины слага
const (
	MinSlugLength = 4
	MaxSlugLength = 25
)

// LongURLPrefix — обязательный префикс целевого URL
const LongURLPrefix = "https://"

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// GenerateSlug генерирует случайный слаг указанной длины.
// Длина вне границ [4, 25] молча приводится к ближайшей границе.
func GenerateSlug(length int) (string, error) {
	if length < MinSlugLength {
		length = MinSlugLength
	}
	if length > MaxSlugLength {
		length = MaxSlugLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	encoded := base64.URLEncoding.EncodeToString(buf)
	return strings.ToLower(encoded[:length]), nil
}

// NormalizeSlug приводит слаг к нижнему регистру
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug проверяет длину и допустимые символы нормализованного слага
func ValidateSlug(slug string) error {
	if len(slug) < MinSlugLength || len(slug) > MaxSlugLength {
		return models.NewValidationError("slug", "must be 4-25 characters")
	}
	if !slugPattern.MatchString(slug) {
		return models.NewValidationError("slug", "may only contain letters, numbers, hyphens, and underscores")
	}
	return nil
}

// ValidateLongURL проверяет, что целевой URL начинается с https://
func ValidateLongURL(longURL string) error {
	if longURL == "" {
		return models.NewValidationError("longUrl", "is required")
	}
	if !strings.HasPrefix(longURL, LongURLPrefix) {
		return models.NewValidationError("longUrl", "must start with https://")
	}
	return nil
}
