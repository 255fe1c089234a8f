package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rwgeo_requests_total",
		Help: "Total number of API requests by route, method and status",
	}, []string{"route", "method", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rwgeo_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rwgeo_provider_errors_total",
		Help: "Total provider lookup failures by route",
	}, []string{"route"})
	ValidationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rwgeo_validation_errors_total",
		Help: "Total requests rejected for missing parameters by route",
	}, []string{"route"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rwgeo_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(ProviderErrorsTotal)
	prometheus.MustRegister(ValidationErrorsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// ObserveRequest：记录单次请求的计数与耗时；route 为注册时的路径模板
func ObserveRequest(route, method string, status int, d time.Duration) {
	RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	RequestDurationMs.WithLabelValues(route).Observe(float64(d.Milliseconds()))
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：统一暴露注册指标供 Prometheus 抓取；在主入口按配置挂载。
func Handler() http.Handler { return promhttp.Handler() }
