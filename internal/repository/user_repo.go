package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/tickernews/internal/database"
	"github.com/hitoshi/tickernews/internal/model"
)

// UserRepo はリレーショナルストアを使用したユーザー・ティッカーリポジトリ。
// USERSとTICKERSの2テーブルを管理する。
type UserRepo struct {
	db *database.DB
}

// NewUserRepo はUserRepoを生成する。
// 生成時にUSERS、TICKERSの順でテーブルを冪等に作成する。
func NewUserRepo(ctx context.Context, db *database.DB) (*UserRepo, error) {
	if err := createUsersSchema(ctx, db); err != nil {
		return nil, err
	}
	return &UserRepo{db: db}, nil
}

// CreateUser はユーザーを作成し、ストアが採番したIDを返す。
func (r *UserRepo) CreateUser(ctx context.Context, username string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username) VALUES ($1) RETURNING userid`,
		username,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, &model.PersistenceError{Op: "create_user", Err: errors.New("no generated key returned")}
	}
	if err != nil {
		return 0, &model.PersistenceError{Op: "create_user", Err: err}
	}

	return id, nil
}

// ReadAllUsers は全ユーザーを返す。順序は保証しない。
func (r *UserRepo) ReadAllUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT userid, username FROM users`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UserID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// ReadUser は指定IDのユーザーを取得する。見つからない場合はmodel.NotFoundErrorを返す。
func (r *UserRepo) ReadUser(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT userid, username FROM users WHERE userid = $1`,
		id,
	).Scan(&user.UserID, &user.Username)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: "users", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	return user, nil
}

// UpdateUser は指定IDのユーザー名を更新する。対象が存在しない場合は何もしない。
func (r *UserRepo) UpdateUser(ctx context.Context, id int, username string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $1 WHERE userid = $2`,
		username, id,
	)
	if err != nil {
		return &model.PersistenceError{Op: "update_user", Err: err}
	}
	return nil
}

// DeleteUser は指定IDのユーザーを削除する。
// TICKERSの外部キーはON DELETE CASCADEのため、購読もストア側で同時に削除される。
func (r *UserRepo) DeleteUser(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE userid = $1`,
		id,
	)
	if err != nil {
		return &model.PersistenceError{Op: "delete_user", Err: err}
	}
	return nil
}

// AddTicker はユーザーにティッカー購読を追加し、ストアが採番したIDを返す。
// userIDが存在しない場合は外部キー制約違反をmodel.PersistenceErrorとして返す。
func (r *UserRepo) AddTicker(ctx context.Context, userID int, ticker string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tickers (user_id, ticker) VALUES ($1, $2) RETURNING id`,
		userID, ticker,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, &model.PersistenceError{Op: "add_ticker", Err: errors.New("no generated key returned")}
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, &model.PersistenceError{
				Op:  "add_ticker",
				Err: fmt.Errorf("user %d does not exist: %w", userID, err),
			}
		}
		return 0, &model.PersistenceError{Op: "add_ticker", Err: err}
	}

	return id, nil
}

// GetTickers は指定ユーザーのティッカー一覧を返す。該当なしの場合は空スライスを返す。
func (r *UserRepo) GetTickers(ctx context.Context, userID int) ([]model.Ticker, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, ticker FROM tickers WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read tickers: %w", err)
	}
	defer rows.Close()

	tickers := []model.Ticker{}
	for rows.Next() {
		var t model.Ticker
		if err := rows.Scan(&t.ID, &t.UserID, &t.Ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker row: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticker rows: %w", err)
	}

	return tickers, nil
}

// RemoveTicker はティッカー自身のIDで購読を削除する。対象が存在しない場合は何もしない。
func (r *UserRepo) RemoveTicker(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tickers WHERE id = $1`,
		id,
	)
	if err != nil {
		return &model.PersistenceError{Op: "remove_ticker", Err: err}
	}
	return nil
}

// isForeignKeyViolation は外部キー制約違反のエラーかどうかを判定する。
// PostgreSQLはSQLSTATEクラス23（integrity constraint violation）、
// SQLiteはエラーメッセージで判定する。
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// compile-time interface check
var _ UserRepository = (*UserRepo)(nil)
