package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/tickernews/internal/database"
)

// スキーマはリポジトリの生成時にCREATE TABLE IF NOT EXISTSで冪等に作成する。
// 複数のリポジトリインスタンスが同じDDLを実行しても副作用はない。
// PostgreSQLとインメモリストア（SQLite）で採番構文が異なるため、方言ごとにDDLを持つ。

const (
	createTableArticlesPostgres = `CREATE TABLE IF NOT EXISTS ARTICLES (
		ID SERIAL PRIMARY KEY,
		TICKER VARCHAR(10),
		PUBLISHER VARCHAR(255),
		TITLE VARCHAR(255),
		URL VARCHAR(255),
		TIMESTAMP VARCHAR(255)
	)`
	createTableArticlesSQLite = `CREATE TABLE IF NOT EXISTS ARTICLES (
		ID INTEGER PRIMARY KEY AUTOINCREMENT,
		TICKER VARCHAR(10),
		PUBLISHER VARCHAR(255),
		TITLE VARCHAR(255),
		URL VARCHAR(255),
		TIMESTAMP VARCHAR(255)
	)`

	createTableUsersPostgres = `CREATE TABLE IF NOT EXISTS USERS (
		USERID SERIAL PRIMARY KEY,
		USERNAME VARCHAR(255)
	)`
	createTableUsersSQLite = `CREATE TABLE IF NOT EXISTS USERS (
		USERID INTEGER PRIMARY KEY AUTOINCREMENT,
		USERNAME VARCHAR(255)
	)`

	// ユーザー削除時に購読を残さないため、外部キーはON DELETE CASCADEで宣言する
	createTableTickersPostgres = `CREATE TABLE IF NOT EXISTS TICKERS (
		ID SERIAL PRIMARY KEY,
		USER_ID INT REFERENCES USERS(USERID) ON DELETE CASCADE,
		TICKER VARCHAR(10)
	)`
	createTableTickersSQLite = `CREATE TABLE IF NOT EXISTS TICKERS (
		ID INTEGER PRIMARY KEY AUTOINCREMENT,
		USER_ID INT REFERENCES USERS(USERID) ON DELETE CASCADE,
		TICKER VARCHAR(10)
	)`
)

// createArticlesSchema は記事テーブルを冪等に作成する。
func createArticlesSchema(ctx context.Context, db *database.DB) error {
	ddl := createTableArticlesPostgres
	if db.Driver() == database.DriverSQLite {
		ddl = createTableArticlesSQLite
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}
	return nil
}

// createUsersSchema はユーザーテーブルとティッカーテーブルを冪等に作成する。
// TICKERSはUSERSを参照するため、作成順序は必ずUSERSが先となる。
func createUsersSchema(ctx context.Context, db *database.DB) error {
	usersDDL := createTableUsersPostgres
	tickersDDL := createTableTickersPostgres
	if db.Driver() == database.DriverSQLite {
		usersDDL = createTableUsersSQLite
		tickersDDL = createTableTickersSQLite
	}

	if _, err := db.ExecContext(ctx, usersDDL); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	if _, err := db.ExecContext(ctx, tickersDDL); err != nil {
		return fmt.Errorf("failed to create tickers table: %w", err)
	}
	return nil
}
