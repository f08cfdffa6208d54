package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tickernews/internal/model"
)

// NewsServiceInterface はニュースハンドラーが必要とするサービスインターフェース。
type NewsServiceInterface interface {
	// FetchRaw は検索クエリに対する外部APIレスポンスJSONをそのまま返す。
	FetchRaw(ctx context.Context, query string) (string, error)
	// FetchParsed は検索クエリに対する記事一覧を型付きで返す。
	FetchParsed(ctx context.Context, query string) ([]model.NewsArticle, error)
}

// NewsMetricsRecorder はニュースハンドラーが外部API呼び出しの成否を
// 記録するためのインターフェース。nilの場合は記録しない。
type NewsMetricsRecorder interface {
	RecordNewsFetchSuccess()
	RecordNewsFetchFailure()
}

// NewsHandler はニュース検索のHTTPハンドラー。
type NewsHandler struct {
	service NewsServiceInterface
	metrics NewsMetricsRecorder
}

// NewNewsHandler はNewsHandlerを生成する。metricsはnil可。
func NewNewsHandler(service NewsServiceInterface, metrics NewsMetricsRecorder) *NewsHandler {
	return &NewsHandler{
		service: service,
		metrics: metrics,
	}
}

// GetRawNews は検索クエリに対する外部APIレスポンスをそのまま返す。
// GET /news/:query
func (h *NewsHandler) GetRawNews(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	raw, err := h.service.FetchRaw(r.Context(), query)
	if err != nil {
		h.recordFailure()
		slog.Error("news fetch failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewNewsFetchFailedError())
		return
	}

	h.recordSuccess()

	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, raw)
}

// GetParsedNews は検索クエリに対する記事一覧を型付きで返す。
// GET /news/parsed/:query
func (h *NewsHandler) GetParsedNews(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	articles, err := h.service.FetchParsed(r.Context(), query)
	if err != nil {
		h.recordFailure()
		slog.Error("news fetch failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		handleNewsError(w, err)
		return
	}

	h.recordSuccess()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(articles)
}

// handleNewsError はニュース取得エラーをHTTPレスポンスに変換する。
// レスポンス形式の不正とそれ以外の失敗を区別する。
func handleNewsError(w http.ResponseWriter, err error) {
	var malformedErr *model.MalformedResponseError
	if errors.As(err, &malformedErr) {
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewMalformedResponseAPIError())
		return
	}
	writeAPIErrorResponse(w, http.StatusBadGateway, model.NewNewsFetchFailedError())
}

func (h *NewsHandler) recordSuccess() {
	if h.metrics != nil {
		h.metrics.RecordNewsFetchSuccess()
	}
}

func (h *NewsHandler) recordFailure() {
	if h.metrics != nil {
		h.metrics.RecordNewsFetchFailure()
	}
}
