// Package config содержит конфигурацию приложения.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config содержит настройки приложения
type Config struct {
	RunAddr         string
	GRPCAddr        string
	BaseURL         string
	RedisAddr       string
	DatabaseDSN     string
	FileStoragePath string
	JWTSecret       string
	SlugLength      int
	TrustedSubnet   string
	CookieTTL       time.Duration
	LogLevel        string
}

// NewConfig создаёт Config с настройками по умолчанию, затем применяет
// флаги командной строки и переменные окружения (окружение приоритетнее)
func NewConfig(args []string) (*Config, error) {
	cfg := &Config{
		RunAddr:    ":8080",
		BaseURL:    "http://localhost:8080",
		JWTSecret:  "default_jwt_secret",
		SlugLength: 8,
		CookieTTL:  24 * time.Hour,
		LogLevel:   "info",
	}

	// Регистрируем флаги
	flags := flag.NewFlagSet("slugmap", flag.ContinueOnError)
	flagRunAddr := flags.String("a", cfg.RunAddr, "address and port to run HTTP server")
	flagGRPCAddr := flags.String("g", "", "address and port to run gRPC server (empty to disable)")
	flagBaseURL := flags.String("b", cfg.BaseURL, "base URL for shortened links")
	flagRedisAddr := flags.String("r", "", "Redis address")
	flagDatabaseDSN := flags.String("d", "", "database DSN for PostgreSQL")
	flagFilePath := flags.String("f", "", "path to file for journaling the in-memory store")
	flagJWTSecret := flags.String("j", cfg.JWTSecret, "JWT secret key")
	flagSlugLength := flags.Int("l", cfg.SlugLength, "generated slug length")
	flagTrustedSubnet := flags.String("t", "", "trusted subnet in CIDR notation for internal endpoints")
	flagLogLevel := flags.String("v", cfg.LogLevel, "log level")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.RunAddr = *flagRunAddr
	cfg.GRPCAddr = *flagGRPCAddr
	cfg.BaseURL = *flagBaseURL
	cfg.RedisAddr = *flagRedisAddr
	cfg.DatabaseDSN = *flagDatabaseDSN
	cfg.FileStoragePath = *flagFilePath
	cfg.JWTSecret = *flagJWTSecret
	cfg.SlugLength = *flagSlugLength
	cfg.TrustedSubnet = *flagTrustedSubnet
	cfg.LogLevel = *flagLogLevel

	// Проверяем переменные окружения
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.RunAddr = addr
	}
	if addr := os.Getenv("GRPC_ADDRESS"); addr != "" {
		cfg.GRPCAddr = addr
	}
	if url := os.Getenv("BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		cfg.RedisAddr = addr
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if path := os.Getenv("FILE_STORAGE_PATH"); path != "" {
		cfg.FileStoragePath = path
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if raw := os.Getenv("SLUG_LENGTH"); raw != "" {
		if length, err := strconv.Atoi(raw); err == nil {
			cfg.SlugLength = length
		}
	}
	if subnet := os.Getenv("TRUSTED_SUBNET"); subnet != "" {
		cfg.TrustedSubnet = subnet
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if raw := os.Getenv("COOKIE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			cfg.CookieTTL = ttl
		}
	}

	// Валидация значений
	if !strings.Contains(cfg.RunAddr, ":") {
		cfg.RunAddr = ":" + cfg.RunAddr
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		cfg.BaseURL = "http://" + cfg.BaseURL
	}
	if cfg.FileStoragePath != "" {
		// Создаём директорию для файла, если она не существует
		dir := filepath.Dir(cfg.FileStoragePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
