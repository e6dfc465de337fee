package app

import (
	"context"
	"testing"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/config"
	"github.com/Andre601/WorldGuardWrapper/internal/eventbus"
	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/wrapper"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	selectImplementation = wrapper.Select
}

func testConfig(t *testing.T, edition string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.Edition = edition
	cfg.Engine.Worlds = []string{"world"}
	cfg.Engine.Flags = []config.CustomFlag{
		{Name: "shop-open", Type: "boolean", Default: true},
	}
	cfg.Storage.DataDir = t.TempDir()
	cfg.EventBus.MetricsInterval = 10 * time.Millisecond
	return cfg
}

func TestNew_ModernPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "modern")
	world := host.World{Name: "world"}

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, implementation.ModernAPIVersion, a.Impl.APIVersion())
	assert.Equal(t, "yaml", a.Driver.Name())

	shop, ok := wrapper.GetFlag[bool](a.Impl, "shop-open")
	require.True(t, ok)

	r, ok := a.Impl.AddRegion("market", []host.Location{
		host.NewLocation(world, 0, 0, 0), host.NewLocation(world, 8, 8, 8),
	}, 0, 0)
	require.True(t, ok)
	require.NoError(t, wrapper.SetRegionFlag(r, shop, false))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(a.exporter.RegionChanges(eventbus.TypeRegionAdded)) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close(ctx))

	// второй запуск читает регионы из того же каталога
	b, err := New(ctx, cfg)
	require.NoError(t, err)
	defer b.Close(ctx)

	shop, ok = wrapper.GetFlag[bool](b.Impl, "shop-open")
	require.True(t, ok)
	got, ok := b.Impl.GetRegion(world, "market")
	require.True(t, ok)
	v, ok := wrapper.RegionFlag(got, shop)
	require.True(t, ok)
	assert.False(t, v)
}

func TestNew_AutosavesChangedWorlds(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "modern")
	cfg.EventBus.Driver = "none"
	cfg.Engine.AutosaveInterval = 10 * time.Millisecond
	world := host.World{Name: "world"}

	a, err := New(ctx, cfg)
	require.NoError(t, err)

	_, ok := a.Impl.AddRegion("market", []host.Location{
		host.NewLocation(world, 0, 0, 0), host.NewLocation(world, 8, 8, 8),
	}, 0, 0)
	require.True(t, ok)

	// запись на диск происходит без Close
	assert.Eventually(t, func() bool {
		records, err := a.Driver.Load(ctx, "world")
		return err == nil && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, testutil.ToFloat64(a.autosaves.WithLabelValues("ok")))
	assert.Zero(t, testutil.ToFloat64(a.autosaves.WithLabelValues("error")))

	require.NoError(t, a.Close(ctx))
	assert.Nil(t, a.autosaveQuit, "Close stops the autosave loop")
}

func TestNew_AutosaveDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "modern")
	cfg.EventBus.Driver = "none"
	cfg.Engine.AutosaveInterval = 0

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Nil(t, a.autosaveQuit)
}

func TestNew_LegacySkipsCustomFlags(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "legacy")
	cfg.EventBus.Driver = "none"

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Equal(t, implementation.LegacyAPIVersion, a.Impl.APIVersion())
	assert.Equal(t, "6.2.2", a.Impl.EngineVersion())
	assert.Nil(t, a.Bus)

	_, ok := a.Impl.GetFlag("shop-open", flag.BoolType)
	assert.False(t, ok)
	assert.True(t, a.Impl.HasRegionManager(host.World{Name: "world"}))
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t, "classic")
	_, err := New(ctx, cfg)
	assert.Error(t, err)

	cfg = testConfig(t, "modern")
	cfg.Storage.Driver = "floppy"
	_, err = New(ctx, cfg)
	assert.Error(t, err)

	cfg = testConfig(t, "modern")
	cfg.EventBus.Driver = "carrier-pigeon"
	_, err = New(ctx, cfg)
	assert.Error(t, err)

	cfg = testConfig(t, "legacy")
	cfg.Engine.Version = "7.1.0"
	_, err = New(ctx, cfg)
	assert.ErrorIs(t, err, wrapper.ErrUnsupportedVersion)

	cfg = testConfig(t, "modern")
	cfg.Engine.Flags = append(cfg.Engine.Flags, config.CustomFlag{Name: "pvp", Type: "state"})
	_, err = New(ctx, cfg)
	assert.ErrorIs(t, err, implementation.ErrFlagConflict)
}
