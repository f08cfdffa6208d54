// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/tickernews/internal/model"
)

// ArticleRepository は記事データの永続化インターフェース。
//
// UpdateとDeleteは対象IDが存在しない場合にエラーを返さず何もしない（冪等no-op契約）。
// 呼び出し元は「既に存在しない」と「削除した」を区別できないが、これは意図した仕様とする。
type ArticleRepository interface {
	// Create は記事を挿入し、ストアが採番したIDを返す。
	// 挿入が拒否された、または採番キーが得られない場合はmodel.PersistenceErrorを返す。
	Create(ctx context.Context, article model.Article) (int, error)

	// Read は指定IDの記事を取得する。見つからない場合はmodel.NotFoundErrorを返す。
	Read(ctx context.Context, id int) (*model.Article, error)

	// ReadByTicker は指定ティッカーの記事一覧を返す。該当なしの場合は空スライスを返す。
	// ティッカーは大文字に正規化して比較する（大文字・小文字を区別しない）。
	ReadByTicker(ctx context.Context, ticker string) ([]model.Article, error)

	// ReadByTickerID は指定ティッカーの記事一覧をID付きで返す。
	// 比較の正規化はReadByTickerと同一とする。
	ReadByTickerID(ctx context.Context, ticker string) ([]model.ArticleWithID, error)

	// Update は指定IDの記事を全フィールド上書きする。対象が存在しない場合は何もしない。
	Update(ctx context.Context, id int, article model.Article) error

	// Delete は指定IDの記事を削除する。対象が存在しない場合は何もしない。
	Delete(ctx context.Context, id int) error
}

// UserRepository はユーザーとティッカー購読の永続化インターフェース。
//
// UpdateUser・DeleteUser・RemoveTickerは対象が存在しない場合にエラーを返さず
// 何もしない（冪等no-op契約）。
type UserRepository interface {
	// CreateUser はユーザーを作成し、ストアが採番したIDを返す。
	// 採番キーが得られない場合はmodel.PersistenceErrorを返す。
	CreateUser(ctx context.Context, username string) (int, error)

	// ReadAllUsers は全ユーザーを返す。テーブルが空の場合は空スライスを返す。
	ReadAllUsers(ctx context.Context) ([]model.User, error)

	// ReadUser は指定IDのユーザーを取得する。見つからない場合はmodel.NotFoundErrorを返す。
	ReadUser(ctx context.Context, id int) (*model.User, error)

	// UpdateUser は指定IDのユーザー名を更新する。対象が存在しない場合は何もしない。
	UpdateUser(ctx context.Context, id int, username string) error

	// DeleteUser は指定IDのユーザーを削除する。
	// 外部キーのON DELETE CASCADEにより、そのユーザーのティッカーも同時に削除される。
	DeleteUser(ctx context.Context, id int) error

	// AddTicker はユーザーにティッカー購読を追加し、ストアが採番したIDを返す。
	// userIDが存在しない場合は外部キー制約違反となり、model.PersistenceErrorを返す。
	AddTicker(ctx context.Context, userID int, ticker string) (int, error)

	// GetTickers は指定ユーザーのティッカー一覧を返す。該当なしの場合は空スライスを返す。
	GetTickers(ctx context.Context, userID int) ([]model.Ticker, error)

	// RemoveTicker はティッカー自身のIDで購読を削除する。対象が存在しない場合は何もしない。
	RemoveTicker(ctx context.Context, id int) error
}
