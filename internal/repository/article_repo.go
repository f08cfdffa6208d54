package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/tickernews/internal/database"
	"github.com/hitoshi/tickernews/internal/model"
)

// ArticleRepo はリレーショナルストアを使用した記事リポジトリ。
// PostgreSQLとテスト用インメモリストアの両方で動作する。
type ArticleRepo struct {
	db *database.DB
}

// NewArticleRepo はArticleRepoを生成する。
// 生成時に記事テーブルを冪等に作成する。
func NewArticleRepo(ctx context.Context, db *database.DB) (*ArticleRepo, error) {
	if err := createArticlesSchema(ctx, db); err != nil {
		return nil, err
	}
	return &ArticleRepo{db: db}, nil
}

// Create は記事を挿入し、ストアが採番したIDを返す。
func (r *ArticleRepo) Create(ctx context.Context, article model.Article) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO articles (ticker, publisher, title, url, timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		article.Ticker, article.Publisher, article.Title, article.URL, article.Timestamp,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, &model.PersistenceError{Op: "create_article", Err: errors.New("no generated key returned")}
	}
	if err != nil {
		return 0, &model.PersistenceError{Op: "create_article", Err: err}
	}

	return id, nil
}

// Read は指定IDの記事を取得する。見つからない場合はmodel.NotFoundErrorを返す。
func (r *ArticleRepo) Read(ctx context.Context, id int) (*model.Article, error) {
	article := &model.Article{}
	err := r.db.QueryRowContext(ctx,
		`SELECT ticker, publisher, title, url, timestamp FROM articles WHERE id = $1`,
		id,
	).Scan(&article.Ticker, &article.Publisher, &article.Title, &article.URL, &article.Timestamp)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: "articles", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read article: %w", err)
	}

	return article, nil
}

// ReadByTicker は指定ティッカーの記事一覧を返す。
// ティッカーは大文字に正規化し、格納値も大文字化して比較する。
func (r *ArticleRepo) ReadByTicker(ctx context.Context, ticker string) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ticker, publisher, title, url, timestamp FROM articles WHERE UPPER(ticker) = $1`,
		strings.ToUpper(ticker),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles by ticker: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.Ticker, &a.Publisher, &a.Title, &a.URL, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

// ReadByTickerID は指定ティッカーの記事一覧をID付きで返す。
// 正規化はReadByTickerと同一（大文字・小文字を区別しない）。
func (r *ArticleRepo) ReadByTickerID(ctx context.Context, ticker string) ([]model.ArticleWithID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticker, publisher, title, url, timestamp FROM articles WHERE UPPER(ticker) = $1`,
		strings.ToUpper(ticker),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles by ticker: %w", err)
	}
	defer rows.Close()

	articles := []model.ArticleWithID{}
	for rows.Next() {
		var a model.ArticleWithID
		if err := rows.Scan(&a.ID, &a.Ticker, &a.Publisher, &a.Title, &a.URL, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

// Update は指定IDの記事を全フィールド上書きする。
// 対象が存在しない場合は0行更新となり、エラーにはしない。
func (r *ArticleRepo) Update(ctx context.Context, id int, article model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET ticker = $1, publisher = $2, title = $3, url = $4, timestamp = $5
		 WHERE id = $6`,
		article.Ticker, article.Publisher, article.Title, article.URL, article.Timestamp, id,
	)
	if err != nil {
		return &model.PersistenceError{Op: "update_article", Err: err}
	}
	return nil
}

// Delete は指定IDの記事を削除する。対象が存在しない場合は何もしない。
func (r *ArticleRepo) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE id = $1`,
		id,
	)
	if err != nil {
		return &model.PersistenceError{Op: "delete_article", Err: err}
	}
	return nil
}

// compile-time interface check
var _ ArticleRepository = (*ArticleRepo)(nil)
