package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// ホールド取得の総数（status: acquired, conflict, error）
	HoldAcquiresTotal *prometheus.CounterVec

	// ホールド解放の総数（status: released, error）
	HoldReleasesTotal *prometheus.CounterVec

	// 現在有効なホールド数
	ActiveHolds prometheus.Gauge

	// 座席マップポーリングの所要時間（status: success, error）
	SeatMapPollDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HoldAcquiresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_hold_acquires_total",
				Help: "Total number of seat hold acquire attempts",
			},
			[]string{"status"},
		),
		HoldReleasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_hold_releases_total",
				Help: "Total number of seat hold release attempts",
			},
			[]string{"status"},
		),
		ActiveHolds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "seat_holds_active",
				Help: "Current number of live seat holds",
			},
		),
		SeatMapPollDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seat_map_poll_duration_seconds",
				Help:    "Time spent fetching the seat map",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HoldAcquiresTotal,
		m.HoldReleasesTotal,
		m.ActiveHolds,
		m.SeatMapPollDuration,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
