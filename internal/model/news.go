// Package model はドメインモデルを定義する。
package model

// NewsArticle はNewsAPIのレスポンスから抽出した記事1件を表す。
// 元ペイロードのsource.nameをPublisherとして射影する。
type NewsArticle struct {
	Publisher   string `json:"publisher"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}
