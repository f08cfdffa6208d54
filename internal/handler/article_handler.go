// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tickernews/internal/model"
	"github.com/hitoshi/tickernews/internal/repository"
)

// DBMetricsRecorder はハンドラーがデータベース操作を記録するためのインターフェース。
// nilの場合は記録しない。
type DBMetricsRecorder interface {
	RecordDBOperation(operation string)
}

// ArticleHandler は記事管理のHTTPハンドラー。
type ArticleHandler struct {
	repo    repository.ArticleRepository
	metrics DBMetricsRecorder
}

// NewArticleHandler はArticleHandlerを生成する。metricsはnil可。
func NewArticleHandler(repo repository.ArticleRepository, metrics DBMetricsRecorder) *ArticleHandler {
	return &ArticleHandler{
		repo:    repo,
		metrics: metrics,
	}
}

// --- リクエスト・レスポンス型 ---

// articleRequest は記事の作成・更新リクエストのボディ。
type articleRequest struct {
	Ticker    string `json:"ticker"`
	Publisher string `json:"publisher"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// articleResponse は記事1件のレスポンス。
type articleResponse struct {
	Ticker    string `json:"ticker"`
	Publisher string `json:"publisher"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// articleWithIDResponse はID付きの記事レスポンス。
type articleWithIDResponse struct {
	ID        int    `json:"id"`
	Ticker    string `json:"ticker"`
	Publisher string `json:"publisher"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// idResponse はストアが採番したIDのレスポンス。
type idResponse struct {
	ID int `json:"id"`
}

// apiErrorResponse はAPIエラーレスポンスの統一フォーマット。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateArticle は記事を作成する。
// POST /articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	id, err := h.repo.Create(r.Context(), toArticle(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("create_article")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(idResponse{ID: id})
}

// GetArticle は指定IDの記事を取得する。
// GET /articles/:id
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	article, err := h.repo.Read(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("read_article")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toArticleResponse(*article))
}

// ListByTicker は指定ティッカーの記事一覧を取得する。
// GET /articles/ticker/:ticker
func (h *ArticleHandler) ListByTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	articles, err := h.repo.ReadByTicker(r.Context(), ticker)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("read_articles_by_ticker")

	resp := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, toArticleResponse(a))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListByTickerID は指定ティッカーの記事一覧をID付きで取得する。
// GET /articles/tickerID/:ticker
func (h *ArticleHandler) ListByTickerID(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	articles, err := h.repo.ReadByTickerID(r.Context(), ticker)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("read_articles_by_ticker_id")

	resp := make([]articleWithIDResponse, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, articleWithIDResponse{
			ID:        a.ID,
			Ticker:    a.Ticker,
			Publisher: a.Publisher,
			Title:     a.Title,
			URL:       a.URL,
			Timestamp: a.Timestamp,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// UpdateArticle は指定IDの記事を全フィールド上書きする。
// 対象が存在しない場合でも200を返す（冪等）。
// PUT /articles/:id
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	if err := h.repo.Update(r.Context(), id, toArticle(req)); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("update_article")

	w.WriteHeader(http.StatusOK)
}

// DeleteArticle は指定IDの記事を削除する。
// 対象が存在しない場合でも200を返す（冪等）。
// DELETE /articles/:id
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("delete_article")

	w.WriteHeader(http.StatusOK)
}

// recordDBOperation はレコーダーが設定されている場合のみ操作を記録する。
func (h *ArticleHandler) recordDBOperation(operation string) {
	if h.metrics != nil {
		h.metrics.RecordDBOperation(operation)
	}
}

// --- ヘルパー関数 ---

// toArticle はリクエストボディからドメインモデルに変換する。
func toArticle(req articleRequest) model.Article {
	return model.Article{
		Ticker:    req.Ticker,
		Publisher: req.Publisher,
		Title:     req.Title,
		URL:       req.URL,
		Timestamp: req.Timestamp,
	}
}

// toArticleResponse はドメインモデルからAPIレスポンスに変換する。
func toArticleResponse(a model.Article) articleResponse {
	return articleResponse{
		Ticker:    a.Ticker,
		Publisher: a.Publisher,
		Title:     a.Title,
		URL:       a.URL,
		Timestamp: a.Timestamp,
	}
}

// parseIDParam はパスパラメータidを正の整数として解析する。
// 解析できない場合は400を書き込み、falseを返す。
func parseIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidIDError(raw))
		return 0, false
	}
	return id, true
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はリポジトリ・サービス層から返されたエラーを
// 適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		switch notFoundErr.Entity {
		case "users":
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError(notFoundErr.ID))
		default:
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewArticleNotFoundError(notFoundErr.ID))
		}
		return
	}

	var persistenceErr *model.PersistenceError
	if errors.As(err, &persistenceErr) {
		slog.Warn("persistence error", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewPersistenceAPIError())
		return
	}

	var malformedErr *model.MalformedResponseError
	if errors.As(err, &malformedErr) {
		slog.Error("malformed news response", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewMalformedResponseAPIError())
		return
	}

	// 型付きエラー以外は内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeArticleNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidID, model.ErrCodeInvalidBody:
		return http.StatusBadRequest
	case model.ErrCodePersistence:
		return http.StatusBadRequest
	case model.ErrCodeNewsFetchFailed, model.ErrCodeMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
