// Prometheus 指标导出
package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics API Server HTTP 指标
//
// 领域指标（审核流转、用户删除）由 moderation / userdeletion 包各自注册。
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// defaultMetrics 进程内共享的指标实例（promauto 注册到默认 registry，只能注册一次）
func defaultMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics("api")
	})
	return metrics
}

// NewMetrics 创建指标实例并注册到默认 registry
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// 紧跟在这些集合名之后的路径段视为 ID
var idSegments = map[string]string{
	"listings":     "{id}",
	"users":        "{id}",
	"profiles":     "{id}",
	"saved":        "{id}",
	"categories":   "{id}",
	"properties":   "{id}",
	"translations": "{lang}",
}

// normalizePath 规范化路径，将 ID 替换为占位符，避免高基数
//
// 例如 /api/v1/listings/4f1c.../contact -> /api/v1/listings/{id}/contact
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/v1/uploads/") {
		return "/api/v1/uploads/{key}"
	}
	segs := strings.Split(path, "/")
	for i := 1; i < len(segs); i++ {
		if placeholder, ok := idSegments[segs[i-1]]; ok && segs[i] != "" {
			segs[i] = placeholder
		}
	}
	return strings.Join(segs, "/")
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
