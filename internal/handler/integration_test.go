package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tickernews/internal/database"
	"github.com/hitoshi/tickernews/internal/repository"
)

// newIntegrationRouter は組み込みストア上の実リポジトリでルーターを構成する。
func newIntegrationRouter(t *testing.T) http.Handler {
	t.Helper()

	ctx := context.Background()

	db, err := database.OpenEmbedded(ctx)
	if err != nil {
		t.Fatalf("failed to open embedded store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	articleRepo, err := repository.NewArticleRepo(ctx, db)
	if err != nil {
		t.Fatalf("failed to create article repo: %v", err)
	}
	userRepo, err := repository.NewUserRepo(ctx, db)
	if err != nil {
		t.Fatalf("failed to create user repo: %v", err)
	}

	return NewRouter(&RouterDeps{
		HealthChecker:     db,
		CORSAllowedOrigin: "*",
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		ArticleRepo:       articleRepo,
		UserRepo:          userRepo,
		NewsService:       &mockNewsService{},
	})
}

// doJSON はJSONボディ付きリクエストを実行するヘルパー。
func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:50000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestIntegration_ArticleLifecycle は記事のCRUD一巡をHTTP経由で検証する。
func TestIntegration_ArticleLifecycle(t *testing.T) {
	router := newIntegrationRouter(t)

	// 作成
	w := doJSON(t, router, http.MethodPost, "/articles",
		`{"ticker":"AAPL","publisher":"Example Times","title":"t1","url":"https://example.com/1","timestamp":"2024-05-01T09:00:00Z"}`)
	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", w.Result().StatusCode)
	}
	var created idResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("created id = %d, want 1", created.ID)
	}

	// 取得
	w = doJSON(t, router, http.MethodGet, "/articles/1", "")
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("read: status = %d, want 200", w.Result().StatusCode)
	}
	var got articleResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode read response: %v", err)
	}
	if got.Title != "t1" {
		t.Errorf("title = %q, want %q", got.Title, "t1")
	}

	// ティッカー検索（大文字・小文字を区別しない）
	w = doJSON(t, router, http.MethodGet, "/articles/ticker/aapl", "")
	var list []articleResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}

	// 更新
	w = doJSON(t, router, http.MethodPut, "/articles/1",
		`{"ticker":"AAPL","publisher":"Example Times","title":"updated","url":"https://example.com/1","timestamp":"2024-05-01T09:00:00Z"}`)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", w.Result().StatusCode)
	}

	w = doJSON(t, router, http.MethodGet, "/articles/1", "")
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode read response: %v", err)
	}
	if got.Title != "updated" {
		t.Errorf("title after update = %q, want %q", got.Title, "updated")
	}

	// 削除 → 404
	w = doJSON(t, router, http.MethodDelete, "/articles/1", "")
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("delete: status = %d, want 200", w.Result().StatusCode)
	}

	w = doJSON(t, router, http.MethodGet, "/articles/1", "")
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("read after delete: status = %d, want 404", w.Result().StatusCode)
	}
}

// TestIntegration_UserAndTickerLifecycle はユーザーとティッカー購読の一巡を検証する。
func TestIntegration_UserAndTickerLifecycle(t *testing.T) {
	router := newIntegrationRouter(t)

	// ユーザー作成
	w := doJSON(t, router, http.MethodPost, "/users", `{"username":"alice"}`)
	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("create user: status = %d, want 201", w.Result().StatusCode)
	}

	// ティッカー追加
	w = doJSON(t, router, http.MethodPost, "/users/1/tickers", `{"ticker":"MSFT"}`)
	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("add ticker: status = %d, want 201", w.Result().StatusCode)
	}

	// 購読一覧
	w = doJSON(t, router, http.MethodGet, "/users/1/tickers", "")
	var tickers []tickerResponse
	if err := json.NewDecoder(w.Body).Decode(&tickers); err != nil {
		t.Fatalf("failed to decode tickers: %v", err)
	}
	if len(tickers) != 1 || tickers[0].Ticker != "MSFT" {
		t.Errorf("tickers = %+v, want single MSFT subscription", tickers)
	}

	// ユーザー削除で購読もカスケード削除される
	w = doJSON(t, router, http.MethodDelete, "/users/1", "")
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("delete user: status = %d, want 200", w.Result().StatusCode)
	}

	w = doJSON(t, router, http.MethodGet, "/users/1", "")
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("read deleted user: status = %d, want 404", w.Result().StatusCode)
	}
}

// TestIntegration_AddTickerForUnknownUser は存在しないユーザーへの購読追加が
// 外部キー制約違反として400になることを検証する。
func TestIntegration_AddTickerForUnknownUser(t *testing.T) {
	router := newIntegrationRouter(t)

	w := doJSON(t, router, http.MethodPost, "/users/999/tickers", `{"ticker":"MSFT"}`)
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Result().StatusCode)
	}
}
