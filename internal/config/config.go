package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// NewsAPI
	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsTimeout    time.Duration

	// Rate Limit
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// データベース関連の環境変数は未設定時にハードコードされたデフォルト値を使用する。
// 必須環境変数（NEWS_API_KEY）が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	if cfg.NewsAPIKey == "" {
		missing = append(missing, "NEWS_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.PostgresHost = getEnvString("POSTGRES_HOST", "news-database")
	cfg.PostgresPort = getEnvString("POSTGRES_PORT", "5432")
	cfg.PostgresUser = getEnvString("POSTGRES_USER", "postgres")
	cfg.PostgresPassword = getEnvString("POSTGRES_PASSWORD", "postgres")
	cfg.PostgresDB = getEnvString("POSTGRES_DB", "news_development")
	cfg.PostgresSSLMode = getEnvString("POSTGRES_SSLMODE", "disable")
	cfg.NewsAPIBaseURL = getEnvString("NEWS_API_BASE_URL", "https://newsapi.org/v2")
	cfg.NewsTimeout = getEnvDuration("NEWS_TIMEOUT", 10*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

// DatabaseURL はPostgreSQLの接続URLを構築して返す。
// パスワードはURLエスケープする（記号を含むパスワードでDSNが壊れないようにする）。
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		url.QueryEscape(c.PostgresPassword),
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
