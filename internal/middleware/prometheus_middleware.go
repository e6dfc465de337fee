package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMiddleware собирает HTTP-метрики API:
//   - <service>_http_request_duration_seconds{method,route,status}
//   - <service>_http_requests_inflight
//   - <service>_http_request_errors_total{method,route,status} (4xx/5xx)
//   - <service>_world_requests_total{world,method} для маршрутов с :world
type PrometheusMiddleware struct {
	reqDuration   *prometheus.HistogramVec
	reqInflight   prometheus.Gauge
	reqErrors     *prometheus.CounterVec
	worldRequests *prometheus.CounterVec
}

// NewPrometheusMiddleware регистрирует метрики в reg (nil - регистр по умолчанию)
func NewPrometheusMiddleware(service string, reg prometheus.Registerer) *PrometheusMiddleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMiddleware{
		reqDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
		reqInflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: service,
			Name:      "http_requests_inflight",
			Help:      "Запросы в обработке.",
		}),
		reqErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "http_request_errors_total",
			Help:      "Запросы, завершившиеся статусом 4xx/5xx.",
		}, []string{"method", "route", "status"}),
		worldRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "world_requests_total",
			Help:      "Запросы к регионам по мирам.",
		}, []string{"world", "method"}),
	}
}

// Handler возвращает middleware для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		pm.reqInflight.Inc()
		defer pm.reqInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			// Не найденный маршрут: сырой путь раздул бы кардинальность
			route = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)
		method := c.Request.Method

		pm.reqDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
		if code >= 400 {
			pm.reqErrors.WithLabelValues(method, route, status).Inc()
		}
		if world := c.Param("world"); world != "" {
			pm.worldRequests.WithLabelValues(world, method).Inc()
		}
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics, отдающий g (nil - регистр по умолчанию)
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r gin.IRoutes, g prometheus.Gatherer) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}
