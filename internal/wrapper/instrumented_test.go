package wrapper

import (
	"errors"
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInstrumented_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	impl, err := Select(modernServer(t, "7.0.9"), WithMetrics(reg))
	require.NoError(t, err)
	require.IsType(t, &instrumented{}, impl)

	world := host.World{Name: "world"}
	impl.GetRegions(world)
	impl.GetRegions(world)
	impl.RegionsAt(host.NewLocation(world, 0, 0, 0))

	m := impl.(*instrumented).metrics
	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("7", "get_regions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("7", "regions_at")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.latency))

	// повторная регистрация переиспользует коллекторы
	again := NewMetrics(reg)
	assert.Same(t, m.calls, again.calls)
}

func TestInstrumented_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	impl, err := Select(legacyServer(t, "6.2.2"), WithTracer(tp.Tracer("test")))
	require.NoError(t, err)

	_, ok := impl.GetFlag("pvp", flag.StateType)
	require.True(t, ok)
	_, err = impl.RegisterFlag("custom", flag.BoolType, nil)
	require.True(t, errors.Is(err, implementation.ErrUnsupported))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "wgw.get_flag", spans[0].Name())
	assert.Equal(t, "wgw.register_flag", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestSelect_PlainWithoutOptions(t *testing.T) {
	impl, err := Select(modernServer(t, "7.0.9"))
	require.NoError(t, err)
	_, isInstrumented := impl.(*instrumented)
	assert.False(t, isInstrumented)
}
