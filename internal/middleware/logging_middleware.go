package middleware

import (
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDKey - ключ gin.Context с trace-ID запроса
const TraceIDKey = "trace_id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи.
// Успешные запросы пишутся в Debug, ошибки сервера - в Warn.
type RequestLogger struct{}

func NewRequestLogger() *RequestLogger { return &RequestLogger{} }

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(TraceIDKey, traceID(c))

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		if status >= 500 {
			logging.Warn("[HTTP] ◀ %s %s %d %s ip=%s trace=%s errors=%s",
				method, path, status, latency, c.ClientIP(), c.GetString(TraceIDKey), c.Errors.String())
			return
		}
		logging.Debug("[HTTP] ◀ %s %s %d %s trace=%s", method, path, status, latency, c.GetString(TraceIDKey))
	}
}

// traceID берёт trace-ID из OpenTelemetry, если span уже создан otelgin
func traceID(c *gin.Context) string {
	span := trace.SpanFromContext(c.Request.Context())
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return uuid.NewString()
}
