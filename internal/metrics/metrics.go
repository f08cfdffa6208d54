// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーおよびニュースクライアントから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordNewsFetchSuccess()
	RecordNewsFetchFailure()
	RecordDBOperation(operation string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	newsFetchSuccess prometheus.Counter
	newsFetchFail    prometheus.Counter
	dbOperations     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickernews_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tickernews_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		newsFetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickernews_news_fetch_success_total",
			Help: "NewsAPI呼び出し成功の合計数",
		}),
		newsFetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickernews_news_fetch_fail_total",
			Help: "NewsAPI呼び出し失敗の合計数",
		}),
		dbOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickernews_db_operations_total",
			Help: "データベース操作の合計数（操作種別ごと）",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.newsFetchSuccess,
		c.newsFetchFail,
		c.dbOperations,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordNewsFetchSuccess はNewsAPI呼び出し成功を記録する。
func (c *Collector) RecordNewsFetchSuccess() {
	c.newsFetchSuccess.Inc()
}

// RecordNewsFetchFailure はNewsAPI呼び出し失敗を記録する。
func (c *Collector) RecordNewsFetchFailure() {
	c.newsFetchFail.Inc()
}

// RecordDBOperation はデータベース操作を記録する。
// operationにはcreate_article, read_userなどの操作名を渡す。
func (c *Collector) RecordDBOperation(operation string) {
	c.dbOperations.WithLabelValues(operation).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
