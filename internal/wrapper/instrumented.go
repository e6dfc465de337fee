package wrapper

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Andre601/WorldGuardWrapper/internal/wrapper"

// Metrics - метрики вызовов фасада.
//
//   - wgw_facade_calls_total{api_version,operation} - counter
//   - wgw_facade_call_duration_seconds{api_version,operation} - histogram
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если метрики уже зарегистрированы, используются существующие коллекторы.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wgw",
			Name:      "facade_calls_total",
			Help:      "Количество вызовов фасада защиты.",
		}, []string{"api_version", "operation"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wgw",
			Name:      "facade_call_duration_seconds",
			Help:      "Длительность вызовов фасада защиты.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"api_version", "operation"}),
	}

	m.calls = registerOrExisting(reg, m.calls)
	m.latency = registerOrExisting(reg, m.latency)
	return m
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		logging.Warn("⚠️ Метрика фасада не зарегистрирована: %v", err)
	}
	return c
}

// instrumented оборачивает реализацию метриками и трассировкой
type instrumented struct {
	next    implementation.Implementation
	version string
	metrics *Metrics
	tracer  trace.Tracer
}

var _ implementation.Implementation = (*instrumented)(nil)

func newInstrumented(next implementation.Implementation, o *options) *instrumented {
	i := &instrumented{
		next:    next,
		version: strconv.Itoa(next.APIVersion()),
		tracer:  o.tracer,
	}
	if o.registerer != nil {
		i.metrics = NewMetrics(o.registerer)
	}
	if i.tracer == nil {
		i.tracer = otel.Tracer(tracerName)
	}
	return i
}

// begin открывает span и возвращает функцию завершения вызова
func (i *instrumented) begin(op string, attrs ...attribute.KeyValue) func(err error) {
	start := time.Now()
	attrs = append(attrs,
		attribute.String("wgw.api_version", i.version),
		attribute.String("wgw.engine_version", i.next.EngineVersion()))
	_, span := i.tracer.Start(context.Background(), "wgw."+op, trace.WithAttributes(attrs...))

	return func(err error) {
		if i.metrics != nil {
			i.metrics.calls.WithLabelValues(i.version, op).Inc()
			i.metrics.latency.WithLabelValues(i.version, op).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func worldAttr(w host.World) attribute.KeyValue { return attribute.String("wgw.world", w.Name) }

func (i *instrumented) APIVersion() int       { return i.next.APIVersion() }
func (i *instrumented) EngineVersion() string { return i.next.EngineVersion() }

func (i *instrumented) GetFlag(name string, valueType reflect.Type) (flag.WrappedFlag, bool) {
	end := i.begin("get_flag", attribute.String("wgw.flag", name))
	defer end(nil)
	return i.next.GetFlag(name, valueType)
}

func (i *instrumented) QueryFlag(player *host.Player, loc host.Location, f flag.WrappedFlag) (any, bool) {
	end := i.begin("query_flag", worldAttr(loc.World))
	defer end(nil)
	return i.next.QueryFlag(player, loc, f)
}

func (i *instrumented) RegisterFlag(name string, valueType reflect.Type, def any) (f flag.WrappedFlag, err error) {
	end := i.begin("register_flag", attribute.String("wgw.flag", name))
	defer func() { end(err) }()
	return i.next.RegisterFlag(name, valueType, def)
}

func (i *instrumented) HasRegionManager(world host.World) bool {
	end := i.begin("has_region_manager", worldAttr(world))
	defer end(nil)
	return i.next.HasRegionManager(world)
}

func (i *instrumented) GetRegion(world host.World, id string) (region.WrappedRegion, bool) {
	end := i.begin("get_region", worldAttr(world))
	defer end(nil)
	return i.next.GetRegion(world, id)
}

func (i *instrumented) GetRegions(world host.World) map[string]region.WrappedRegion {
	end := i.begin("get_regions", worldAttr(world))
	defer end(nil)
	return i.next.GetRegions(world)
}

func (i *instrumented) RegionsAt(loc host.Location) region.Set {
	end := i.begin("regions_at", worldAttr(loc.World))
	defer end(nil)
	return i.next.RegionsAt(loc)
}

func (i *instrumented) RegionsIn(minimum, maximum host.Location) region.Set {
	end := i.begin("regions_in", worldAttr(minimum.World))
	defer end(nil)
	return i.next.RegionsIn(minimum, maximum)
}

func (i *instrumented) AddRegion(id string, points []host.Location, minY, maxY int) (region.WrappedRegion, bool) {
	attrs := []attribute.KeyValue{attribute.Int("wgw.points", len(points))}
	if len(points) > 0 {
		attrs = append(attrs, worldAttr(points[0].World))
	}
	end := i.begin("add_region", attrs...)
	defer end(nil)
	return i.next.AddRegion(id, points, minY, maxY)
}

func (i *instrumented) RemoveRegion(world host.World, id string) (region.Set, bool) {
	end := i.begin("remove_region", worldAttr(world))
	defer end(nil)
	return i.next.RemoveRegion(world, id)
}
