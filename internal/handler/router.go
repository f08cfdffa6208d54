package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tickernews/internal/metrics"
	"github.com/hitoshi/tickernews/internal/middleware"
	"github.com/hitoshi/tickernews/internal/repository"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *database.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nil可）
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// リポジトリ・サービス
	ArticleRepo repository.ArticleRepository
	UserRepo    repository.UserRepository
	NewsService NewsServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → CORS → Logging → Recovery → Metrics → RateLimit
//
// ニュースルート（/news/*）には外部API保護のため追加のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	var dbMetrics DBMetricsRecorder
	var newsMetrics NewsMetricsRecorder
	if deps.Metrics != nil {
		dbMetrics = deps.Metrics
		newsMetrics = deps.Metrics
	}

	articleHandler := NewArticleHandler(deps.ArticleRepo, dbMetrics)
	userHandler := NewUserHandler(deps.UserRepo, dbMetrics)
	newsHandler := NewNewsHandler(deps.NewsService, newsMetrics)

	// --- 運用ルート（レート制限の外） ---

	r.Get("/health", healthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- CRUDルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 記事管理
		r.Route("/articles", func(r chi.Router) {
			r.Post("/", articleHandler.CreateArticle)
			r.Get("/ticker/{ticker}", articleHandler.ListByTicker)
			r.Get("/tickerID/{ticker}", articleHandler.ListByTickerID)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", articleHandler.GetArticle)
				r.Put("/", articleHandler.UpdateArticle)
				r.Delete("/", articleHandler.DeleteArticle)
			})
		})

		// ユーザー管理
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.ListUsers)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)

				// ティッカー購読
				r.Post("/tickers", userHandler.AddTicker)
				r.Get("/tickers", userHandler.GetTickers)
			})
		})

		// ティッカー購読の削除は購読自身のIDで行う
		r.Delete("/tickers/{id}", userHandler.RemoveTicker)
	})

	// --- ニュースルート ---
	// ミドルウェアスタック: RateLimit(General) → RateLimit(News)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.NewsMiddleware())
		}

		r.Route("/news", func(r chi.Router) {
			r.Get("/parsed/{query}", newsHandler.GetParsedNews)
			r.Get("/{query}", newsHandler.GetRawNews)
		})
	})

	return r
}

// healthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
