// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// contextKey はコンテキスト格納用のキー型。パッケージ外との衝突を防ぐ。
type contextKey string

const requestIDKey contextKey = "request_id"

// ErrNoRequestID はコンテキストにリクエストIDが存在しないことを表す。
var ErrNoRequestID = errors.New("リクエストIDがコンテキストに存在しません")

// RequestIDHeader はリクエストIDを伝搬するHTTPヘッダー名。
const RequestIDHeader = "X-Request-ID"

// NewRequestIDMiddleware は各リクエストにUUIDのリクエストIDを付与するミドルウェアを返す。
// クライアントがX-Request-IDヘッダーを送ってきた場合はそれを引き継ぐ。
// 付与したIDはレスポンスヘッダーとリクエストコンテキストの両方に設定する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, requestID)

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はコンテキストからリクエストIDを取得する。
func RequestIDFromContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestID
	}
	return requestID, nil
}
