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
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordBorrowSuccess()
	RecordReturnSuccess()
	RecordLendingConflict(reason string)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	borrowSuccess   prometheus.Counter
	returnSuccess   prometheus.Counter
	lendingConflict *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		borrowSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_borrow_success_total",
			Help: "書籍貸出成功の合計数",
		}),
		returnSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_return_success_total",
			Help: "書籍返却成功の合計数",
		}),
		lendingConflict: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_lending_conflict_total",
			Help: "貸出・返却の競合による拒否数（理由別）",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "library_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.borrowSuccess,
		c.returnSuccess,
		c.lendingConflict,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordBorrowSuccess は貸出成功を記録する。
func (c *Collector) RecordBorrowSuccess() {
	c.borrowSuccess.Inc()
}

// RecordReturnSuccess は返却成功を記録する。
func (c *Collector) RecordReturnSuccess() {
	c.returnSuccess.Inc()
}

// RecordLendingConflict は貸出・返却の競合による拒否を理由別に記録する。
// reasonにはnot_available、not_borrowed、wrong_readerなどを指定する。
func (c *Collector) RecordLendingConflict(reason string) {
	c.lendingConflict.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
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
