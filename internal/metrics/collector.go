// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Generation outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeStatus   = "upstream_status"
	OutcomeFailure  = "failure"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// 图像生成指标
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	upstreamStatus     *prometheus.CounterVec
	imageBytes         *prometheus.HistogramVec
	generationsActive  prometheus.Gauge

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为 nil 时注册到 prometheus.DefaultRegisterer。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpRateLimited = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Total number of HTTP requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// 图像生成指标
	c.generationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_generations_total",
			Help:      "Total number of plugin invocations by outcome",
		},
		[]string{"mode", "outcome"},
	)

	c.generationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_upstream_duration_seconds",
			Help:      "Upstream image API call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)

	c.upstreamStatus = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_upstream_responses_total",
			Help:      "Upstream image API responses by status code",
		},
		[]string{"code"},
	)

	c.imageBytes = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_result_size_bytes",
			Help:      "Size of generated images in bytes",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 7),
		},
		[]string{"mode"},
	)

	c.generationsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "image_generations_in_flight",
			Help:      "Number of upstream image calls currently in flight",
		},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordRateLimited 记录被限流的请求
func (c *Collector) RecordRateLimited(path string) {
	c.httpRateLimited.WithLabelValues(path).Inc()
}

// =============================================================================
// 🖼️ 图像生成指标记录
// =============================================================================

// UpstreamStarted 标记一次上游调用开始，返回的函数在调用结束时执行。
func (c *Collector) UpstreamStarted() (done func()) {
	c.generationsActive.Inc()
	return c.generationsActive.Dec
}

// RecordGeneration 记录一次插件调用的结果。duration 为 0 表示没有发出上游请求。
func (c *Collector) RecordGeneration(mode, outcome string, duration time.Duration, imageSize int) {
	c.generationsTotal.WithLabelValues(mode, outcome).Inc()
	if duration > 0 {
		c.generationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	}
	if outcome == OutcomeSuccess {
		c.imageBytes.WithLabelValues(mode).Observe(float64(imageSize))
	}
}

// RecordUpstreamStatus 记录上游返回的状态码
func (c *Collector) RecordUpstreamStatus(code int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
