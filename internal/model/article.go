// Package model はドメインモデルを定義する。
package model

// Article はティッカーに紐づくニュース記事を表す。
// TimestampはNewsAPIのpublishedAtをそのまま保持するため文字列型とする。
type Article struct {
	Ticker    string
	Publisher string
	Title     string
	URL       string
	Timestamp string
}

// ArticleWithID は永続化済みの記事をストア採番のIDとともに表す。
type ArticleWithID struct {
	ID int
	Article
}
