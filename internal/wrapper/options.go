package wrapper

import (
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	registerer prometheus.Registerer
	tracer     trace.Tracer
	removal    protection.RemovalStrategy
}

// Option настраивает выбор реализации
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{removal: protection.RemoveChildren}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) instrumented() bool {
	return o.registerer != nil || o.tracer != nil
}

// WithMetrics включает счётчики и гистограммы вызовов фасада
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithTracer открывает span на каждый вызов фасада
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithRemovalStrategy задаёт судьбу потомков при удалении региона.
// Редакция 6.x всегда удаляет потомков и опцию игнорирует.
func WithRemovalStrategy(s protection.RemovalStrategy) Option {
	return func(o *options) { o.removal = s }
}
