package eventbus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsExporter периодически переносит Stats шины в Prometheus и считает
// события регионов по типу.
type MetricsExporter struct {
	bus  EventBus
	quit chan struct{}
	done chan struct{}
	sub  Subscription

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
	regions   *prometheus.CounterVec
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики eventbus_* в reg.
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	factory := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{Namespace: "eventbus", Name: name, Help: help})
	}

	return &MetricsExporter{
		bus:       bus,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		published: counter("messages_published_total", "События, принятые шиной."),
		consumed:  counter("messages_consumed_total", "Доставки событий подписчикам."),
		dropped:   counter("messages_dropped_total", "События, не принятые шиной."),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "События в очереди на доставку.",
		}),
		regions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "region_changes_total",
			Help:      "Затронутые регионы по типу события.",
		}, []string{"event_type"}),
	}
}

// Start подписывается на события регионов и запускает обновление счётчиков.
// Метод неблокирующий.
func (m *MetricsExporter) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	sub, err := m.bus.Subscribe(context.Background(), Filter{Types: []string{TypeRegionAdded, TypeRegionRemoved}},
		func(ctx context.Context, ev *Envelope) {
			re, err := DecodeRegionEvent(ev)
			if err != nil {
				return
			}
			m.regions.WithLabelValues(ev.EventType).Add(float64(len(re.Regions)))
		})
	if err != nil {
		return err
	}
	m.sub = sub

	go m.loop(interval)
	return nil
}

// RegionChanges возвращает счётчик изменений регионов для типа события
func (m *MetricsExporter) RegionChanges(eventType string) prometheus.Counter {
	return m.regions.WithLabelValues(eventType)
}

// Stop останавливает обновление метрик.
func (m *MetricsExporter) Stop() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(m.done)

	// Counter растёт только вперёд, поэтому переносим дельту с прошлого тика
	var prev Stats

	for {
		select {
		case <-ticker.C:
			m.collect(&prev)
		case <-m.quit:
			m.collect(&prev)
			return
		}
	}
}

func (m *MetricsExporter) collect(prev *Stats) {
	stats := m.bus.Metrics()

	if d := stats.Published - prev.Published; d > 0 {
		m.published.Add(float64(d))
	}
	if d := stats.Consumed - prev.Consumed; d > 0 {
		m.consumed.Add(float64(d))
	}
	if d := stats.Dropped - prev.Dropped; d > 0 {
		m.dropped.Add(float64(d))
	}
	m.inflight.Set(float64(stats.InFlight))

	*prev = stats
}
