package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tickernews/internal/model"
	"github.com/hitoshi/tickernews/internal/repository"
)

// UserHandler はユーザーとティッカー購読管理のHTTPハンドラー。
type UserHandler struct {
	repo    repository.UserRepository
	metrics DBMetricsRecorder
}

// NewUserHandler はUserHandlerを生成する。metricsはnil可。
func NewUserHandler(repo repository.UserRepository, metrics DBMetricsRecorder) *UserHandler {
	return &UserHandler{
		repo:    repo,
		metrics: metrics,
	}
}

// --- リクエスト・レスポンス型 ---

// userRequest はユーザーの作成・更新リクエストのボディ。
type userRequest struct {
	Username string `json:"username"`
}

// userResponse はユーザー1件のレスポンス。
type userResponse struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// tickerRequest はティッカー購読追加リクエストのボディ。
type tickerRequest struct {
	Ticker string `json:"ticker"`
}

// tickerResponse はティッカー購読1件のレスポンス。
type tickerResponse struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Ticker string `json:"ticker"`
}

// CreateUser はユーザーを作成する。
// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	id, err := h.repo.CreateUser(r.Context(), req.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("create_user")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(idResponse{ID: id})
}

// ListUsers は全ユーザーを取得する。
// GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ReadAllUsers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("read_all_users")

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse{UserID: u.UserID, Username: u.Username})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetUser は指定IDのユーザーを取得する。
// GET /users/:id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.repo.ReadUser(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("read_user")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse{UserID: user.UserID, Username: user.Username})
}

// UpdateUser は指定IDのユーザー名を更新する。
// 対象が存在しない場合でも200を返す（冪等）。
// PUT /users/:id
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	if err := h.repo.UpdateUser(r.Context(), id, req.Username); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("update_user")

	w.WriteHeader(http.StatusOK)
}

// DeleteUser は指定IDのユーザーを削除する。
// 外部キーのカスケードにより、そのユーザーのティッカー購読も同時に削除される。
// DELETE /users/:id
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteUser(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("delete_user")

	w.WriteHeader(http.StatusOK)
}

// AddTicker はユーザーにティッカー購読を追加する。
// POST /users/:id/tickers
func (h *UserHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req tickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	tickerID, err := h.repo.AddTicker(r.Context(), id, req.Ticker)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("add_ticker")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(idResponse{ID: tickerID})
}

// GetTickers はユーザーのティッカー購読一覧を取得する。
// GET /users/:id/tickers
func (h *UserHandler) GetTickers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	tickers, err := h.repo.GetTickers(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("get_tickers")

	resp := make([]tickerResponse, 0, len(tickers))
	for _, tk := range tickers {
		resp = append(resp, tickerResponse{ID: tk.ID, UserID: tk.UserID, Ticker: tk.Ticker})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RemoveTicker はティッカー購読を購読自身のIDで削除する。
// 対象が存在しない場合でも200を返す（冪等）。
// DELETE /tickers/:id
func (h *UserHandler) RemoveTicker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.repo.RemoveTicker(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordDBOperation("remove_ticker")

	w.WriteHeader(http.StatusOK)
}

// recordDBOperation はレコーダーが設定されている場合のみ操作を記録する。
func (h *UserHandler) recordDBOperation(operation string) {
	if h.metrics != nil {
		h.metrics.RecordDBOperation(operation)
	}
}
