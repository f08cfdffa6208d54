// Package news はNewsAPI（newsapi.org）連携機能を提供する。
// 検索クエリ1回につきアウトバウンドGETを1回発行し、レスポンスJSONを
// そのまま返すパススルーと、型付きで射影した記事一覧の2形態を提供する。
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/tickernews/internal/model"
)

// pageSize は1クエリあたりの取得記事数。NewsAPIのpageSizeパラメータに渡す。
const pageSize = 5

// Client はNewsAPIのクライアント。
// リトライ・ページネーション・レート制限は行わず、転送層の失敗はそのまま伝播する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	baseURL    string // テスト用にエンドポイントを差し替え可能
	sanitizer  *bluemonday.Policy
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしのAPIルート（例: "https://newsapi.org/v2"）を指定する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		baseURL:    baseURL,
		// 記事タイトル・概要は外部入力のため、HTMLタグを全て除去してから返す
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// FetchRaw は指定クエリでNewsAPIを検索し、レスポンスJSONを文字列のまま返す。
// HTTPステータスが200以外の場合はエラーを返す。
func (c *Client) FetchRaw(ctx context.Context, query string) (string, error) {
	reqURL, err := url.Parse(c.baseURL + "/everything")
	if err != nil {
		return "", fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("q", query)
	q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	q.Set("apiKey", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Tickernews/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("NewsAPIの呼び出しに失敗しました",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("NewsAPIがエラーステータスを返しました",
			slog.String("query", query),
			slog.Int("http_status", resp.StatusCode),
		)
		return "", fmt.Errorf("NewsAPIがステータス %d を返しました", resp.StatusCode)
	}

	return string(body), nil
}

// FetchParsed は指定クエリでNewsAPIを検索し、型付きの記事一覧に射影して返す。
// レスポンスが期待する構造を満たさない場合はmodel.MalformedResponseErrorを返す。
func (c *Client) FetchParsed(ctx context.Context, query string) ([]model.NewsArticle, error) {
	raw, err := c.FetchRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.parseArticles(raw)
}

// newsAPIEnvelope はNewsAPIレスポンスのデコード用構造体。
// 必須フィールドの欠落を検出するためポインタ型で受ける。
type newsAPIEnvelope struct {
	Articles []struct {
		Source *struct {
			Name *string `json:"name"`
		} `json:"source"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		URL         *string `json:"url"`
		PublishedAt *string `json:"publishedAt"`
	} `json:"articles"`
}

// parseArticles はレスポンスJSONを厳密にデコードし、記事一覧へ射影する。
// source.name、title、url、publishedAtのいずれかが欠落した記事があれば
// 全体をmodel.MalformedResponseErrorとして失敗させる。
// descriptionはNewsAPIがnullを返すことがあるため、欠落時は空文字列とする。
func (c *Client) parseArticles(raw string) ([]model.NewsArticle, error) {
	var envelope newsAPIEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("JSONのデコードに失敗: %v", err)}
	}

	if envelope.Articles == nil {
		return nil, &model.MalformedResponseError{Reason: "articlesフィールドがありません"}
	}

	articles := make([]model.NewsArticle, 0, len(envelope.Articles))
	for i, a := range envelope.Articles {
		if a.Source == nil || a.Source.Name == nil {
			return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("articles[%d].source.name がありません", i)}
		}
		if a.Title == nil {
			return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("articles[%d].title がありません", i)}
		}
		if a.URL == nil {
			return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("articles[%d].url がありません", i)}
		}
		if a.PublishedAt == nil {
			return nil, &model.MalformedResponseError{Reason: fmt.Sprintf("articles[%d].publishedAt がありません", i)}
		}

		description := ""
		if a.Description != nil {
			description = *a.Description
		}

		articles = append(articles, model.NewsArticle{
			Publisher:   c.sanitizer.Sanitize(*a.Source.Name),
			Title:       c.sanitizer.Sanitize(*a.Title),
			Description: c.sanitizer.Sanitize(description),
			URL:         *a.URL,
			PublishedAt: *a.PublishedAt,
		})
	}

	return articles, nil
}
