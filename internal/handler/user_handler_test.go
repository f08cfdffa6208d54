package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tickernews/internal/model"
)

// --- モック定義 ---

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	createUserFn   func(ctx context.Context, username string) (int, error)
	readAllUsersFn func(ctx context.Context) ([]model.User, error)
	readUserFn     func(ctx context.Context, id int) (*model.User, error)
	updateUserFn   func(ctx context.Context, id int, username string) error
	deleteUserFn   func(ctx context.Context, id int) error
	addTickerFn    func(ctx context.Context, userID int, ticker string) (int, error)
	getTickersFn   func(ctx context.Context, userID int) ([]model.Ticker, error)
	removeTickerFn func(ctx context.Context, id int) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, username string) (int, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, username)
	}
	return 1, nil
}

func (m *mockUserRepo) ReadAllUsers(ctx context.Context) ([]model.User, error) {
	if m.readAllUsersFn != nil {
		return m.readAllUsersFn(ctx)
	}
	return []model.User{}, nil
}

func (m *mockUserRepo) ReadUser(ctx context.Context, id int) (*model.User, error) {
	if m.readUserFn != nil {
		return m.readUserFn(ctx, id)
	}
	return &model.User{}, nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, id int, username string) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, username)
	}
	return nil
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id int) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) AddTicker(ctx context.Context, userID int, ticker string) (int, error) {
	if m.addTickerFn != nil {
		return m.addTickerFn(ctx, userID, ticker)
	}
	return 1, nil
}

func (m *mockUserRepo) GetTickers(ctx context.Context, userID int) ([]model.Ticker, error) {
	if m.getTickersFn != nil {
		return m.getTickersFn(ctx, userID)
	}
	return []model.Ticker{}, nil
}

func (m *mockUserRepo) RemoveTicker(ctx context.Context, id int) error {
	if m.removeTickerFn != nil {
		return m.removeTickerFn(ctx, id)
	}
	return nil
}

// --- POST /users テスト ---

func TestUserHandler_CreateUser_Returns201WithID(t *testing.T) {
	repo := &mockUserRepo{
		createUserFn: func(ctx context.Context, username string) (int, error) {
			if username != "alice" {
				t.Errorf("username = %q, want %q", username, "alice")
			}
			return 3, nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"username":"alice"}`)))
	w := httptest.NewRecorder()

	h.CreateUser(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	var resp idResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 3 {
		t.Errorf("id = %d, want 3", resp.ID)
	}
}

func TestUserHandler_CreateUser_InvalidBody_Returns400(t *testing.T) {
	h := NewUserHandler(&mockUserRepo{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()

	h.CreateUser(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- GET /users テスト ---

func TestUserHandler_ListUsers_Returns200WithArray(t *testing.T) {
	repo := &mockUserRepo{
		readAllUsersFn: func(ctx context.Context) ([]model.User, error) {
			return []model.User{
				{UserID: 1, Username: "alice"},
				{UserID: 2, Username: "bob"},
			}, nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()

	h.ListUsers(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var resp []userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].Username != "alice" || resp[1].UserID != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_ListUsers_Empty_ReturnsEmptyJSONArray(t *testing.T) {
	h := NewUserHandler(&mockUserRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()

	h.ListUsers(w, req)

	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want %q", got, "[]\n")
	}
}

// --- GET /users/:id テスト ---

func TestUserHandler_GetUser_Returns200(t *testing.T) {
	repo := &mockUserRepo{
		readUserFn: func(ctx context.Context, id int) (*model.User, error) {
			return &model.User{UserID: id, Username: "alice"}, nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req = withChiURLParam(req, "id", "1")
	w := httptest.NewRecorder()

	h.GetUser(w, req)

	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID != 1 || resp.Username != "alice" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_GetUser_NotFound_Returns404(t *testing.T) {
	repo := &mockUserRepo{
		readUserFn: func(ctx context.Context, id int) (*model.User, error) {
			return nil, &model.NotFoundError{Entity: "users", ID: id}
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/999", nil)
	req = withChiURLParam(req, "id", "999")
	w := httptest.NewRecorder()

	h.GetUser(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
	result := parseAPIErrorResponse(t, w)
	if result["code"] != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeUserNotFound)
	}
}

// --- PUT /users/:id, DELETE /users/:id テスト ---

func TestUserHandler_UpdateUser_Returns200(t *testing.T) {
	var gotID int
	var gotUsername string
	repo := &mockUserRepo{
		updateUserFn: func(ctx context.Context, id int, username string) error {
			gotID = id
			gotUsername = username
			return nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodPut, "/users/2", bytes.NewReader([]byte(`{"username":"bob"}`)))
	req = withChiURLParam(req, "id", "2")
	w := httptest.NewRecorder()

	h.UpdateUser(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotID != 2 || gotUsername != "bob" {
		t.Errorf("repository received id=%d username=%q, want id=2 username=bob", gotID, gotUsername)
	}
}

func TestUserHandler_DeleteUser_Returns200(t *testing.T) {
	deleteCalled := false
	repo := &mockUserRepo{
		deleteUserFn: func(ctx context.Context, id int) error {
			deleteCalled = true
			return nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodDelete, "/users/2", nil)
	req = withChiURLParam(req, "id", "2")
	w := httptest.NewRecorder()

	h.DeleteUser(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if !deleteCalled {
		t.Error("repository DeleteUser not called")
	}
}

// --- POST /users/:id/tickers テスト ---

func TestUserHandler_AddTicker_Returns201WithID(t *testing.T) {
	repo := &mockUserRepo{
		addTickerFn: func(ctx context.Context, userID int, ticker string) (int, error) {
			if userID != 1 || ticker != "MSFT" {
				t.Errorf("userID=%d ticker=%q, want userID=1 ticker=MSFT", userID, ticker)
			}
			return 10, nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/1/tickers", bytes.NewReader([]byte(`{"ticker":"MSFT"}`)))
	req = withChiURLParam(req, "id", "1")
	w := httptest.NewRecorder()

	h.AddTicker(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	var resp idResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 10 {
		t.Errorf("id = %d, want 10", resp.ID)
	}
}

func TestUserHandler_AddTicker_UnknownUser_Returns400(t *testing.T) {
	repo := &mockUserRepo{
		addTickerFn: func(ctx context.Context, userID int, ticker string) (int, error) {
			return 0, &model.PersistenceError{Op: "add_ticker"}
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/999/tickers", bytes.NewReader([]byte(`{"ticker":"MSFT"}`)))
	req = withChiURLParam(req, "id", "999")
	w := httptest.NewRecorder()

	h.AddTicker(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	result := parseAPIErrorResponse(t, w)
	if result["code"] != model.ErrCodePersistence {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodePersistence)
	}
}

// --- GET /users/:id/tickers テスト ---

func TestUserHandler_GetTickers_Returns200WithArray(t *testing.T) {
	repo := &mockUserRepo{
		getTickersFn: func(ctx context.Context, userID int) ([]model.Ticker, error) {
			return []model.Ticker{
				{ID: 1, UserID: userID, Ticker: "AAPL"},
				{ID: 2, UserID: userID, Ticker: "MSFT"},
			}, nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/1/tickers", nil)
	req = withChiURLParam(req, "id", "1")
	w := httptest.NewRecorder()

	h.GetTickers(w, req)

	var resp []tickerResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].Ticker != "AAPL" || resp[1].ID != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

// --- DELETE /tickers/:id テスト ---

func TestUserHandler_RemoveTicker_Returns200(t *testing.T) {
	var gotID int
	repo := &mockUserRepo{
		removeTickerFn: func(ctx context.Context, id int) error {
			gotID = id
			return nil
		},
	}

	h := NewUserHandler(repo, nil)

	req := httptest.NewRequest(http.MethodDelete, "/tickers/10", nil)
	req = withChiURLParam(req, "id", "10")
	w := httptest.NewRecorder()

	h.RemoveTicker(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotID != 10 {
		t.Errorf("repository received id=%d, want 10", gotID)
	}
}
