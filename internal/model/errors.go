// Package model はドメインモデルを定義する。
package model

import "fmt"

// NotFoundError はID指定の検索で該当行が存在しなかったことを表す。
type NotFoundError struct {
	Entity string // articles, users など対象テーブル名
	ID     int
}

// Error はerrorインターフェースを実装する。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: id %d に該当するレコードが見つかりません", e.Entity, e.ID)
}

// PersistenceError はストアが書き込みを拒否した、または採番キーを返さなかったことを表す。
// 外部キー制約違反もこのエラーとして呼び出し元に伝播する。
type PersistenceError struct {
	Op  string // create_article, add_ticker など失敗した操作名
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: 永続化に失敗しました: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: 永続化に失敗しました", e.Op)
}

// Unwrap はラップした元エラーを返す。
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConnectionError は起動時にストアへ到達できなかったことを表す。
type ConnectionError struct {
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("データベースに接続できません: %v", e.Err)
}

// Unwrap はラップした元エラーを返す。
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MalformedResponseError はNewsAPIのレスポンスが期待する構造を満たさなかったことを表す。
type MalformedResponseError struct {
	Reason string
}

// Error はerrorインターフェースを実装する。
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("NewsAPIレスポンスの形式が不正です: %s", e.Reason)
}

// APIError はHTTPレスポンスに載せる統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, persistence, news, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeArticleNotFound   = "ARTICLE_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeInvalidBody       = "INVALID_BODY"
	ErrCodePersistence       = "PERSISTENCE_FAILED"
	ErrCodeNewsFetchFailed   = "NEWS_FETCH_FAILED"
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"
)

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(id int) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %d", id),
		Category: "persistence",
		Action:   "記事IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(id int) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", id),
		Category: "persistence",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewInvalidIDError はパスパラメータのID形式が不正な場合のエラーを生成する。
func NewInvalidIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("無効なIDです: %s", raw),
		Category: "validation",
		Action:   "IDには正の整数を指定してください。",
	}
}

// NewInvalidBodyError はリクエストボディのデコードに失敗した場合のエラーを生成する。
func NewInvalidBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBody,
		Message:  "リクエストボディを解釈できません。",
		Category: "validation",
		Action:   "JSONの形式とフィールドの型を確認してください。",
	}
}

// NewPersistenceAPIError は永続化失敗をAPIエラーとして生成する。
func NewPersistenceAPIError() *APIError {
	return &APIError{
		Code:     ErrCodePersistence,
		Message:  "データの保存に失敗しました。",
		Category: "persistence",
		Action:   "入力内容（特に参照先ユーザーの存在）を確認してください。",
	}
}

// NewNewsFetchFailedError はNewsAPI呼び出し失敗のエラーを生成する。
func NewNewsFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeNewsFetchFailed,
		Message:  "ニュースの取得に失敗しました。",
		Category: "news",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMalformedResponseAPIError はNewsAPIレスポンス形式不正のエラーを生成する。
func NewMalformedResponseAPIError() *APIError {
	return &APIError{
		Code:     ErrCodeMalformedResponse,
		Message:  "ニュースAPIのレスポンスを解釈できません。",
		Category: "news",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
