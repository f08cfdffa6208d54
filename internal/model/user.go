// Package model はドメインモデルを定義する。
package model

// User はサービス利用ユーザーを表す。
// UserIDはストアが採番するため、永続化前は0のままとなる。
type User struct {
	UserID   int
	Username string
}

// Ticker はユーザーが購読する銘柄シンボルを表す。
// UserIDは所有ユーザーへの外部キー。Userエンティティはティッカー一覧を保持せず、
// 購読一覧は常にユーザーIDで別途問い合わせる。
type Ticker struct {
	ID     int
	UserID int
	Ticker string
}
