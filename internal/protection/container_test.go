package protection

import (
	"context"
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionContainer_LoadAllAndSave(t *testing.T) {
	ctx := context.Background()
	driver := store.NewMemoryDriver()
	c := NewRegionContainer(NewDefaultFlagRegistry(), driver)
	l := &recordingListener{}
	c.AddListener(l)

	require.NoError(t, c.LoadAll(ctx, []string{"world", "world_nether", "world_the_end"}))
	assert.Equal(t, []string{"world", "world_nether", "world_the_end"}, c.Worlds())

	m, ok := c.Get("WORLD")
	require.True(t, ok)
	m.AddRegion(mustCuboid(t, "spawn", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, []string{"world/spawn"}, l.added)

	require.NoError(t, c.SaveAll(ctx))
	records, err := driver.Load(ctx, "world")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "spawn", records[0].ID)

	again, err := c.Load(ctx, "world")
	require.NoError(t, err)
	assert.Same(t, m, again)

	_, ok = c.Get("unknown")
	assert.False(t, ok)
}

func TestRegionContainer_Unload(t *testing.T) {
	ctx := context.Background()
	driver := store.NewMemoryDriver()
	c := NewRegionContainer(NewDefaultFlagRegistry(), driver)

	m, err := c.Load(ctx, "world")
	require.NoError(t, err)
	m.AddRegion(mustCuboid(t, "keep", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1}))

	require.NoError(t, c.Unload(ctx, "world"))
	_, ok := c.Get("world")
	assert.False(t, ok)

	reloaded, err := c.Load(ctx, "world")
	require.NoError(t, err)
	assert.True(t, reloaded.HasRegion("keep"))
}

func TestRegionContainer_KeepsUnregisteredFlagsAcrossResave(t *testing.T) {
	ctx := context.Background()
	driver := store.NewMemoryDriver()

	withShop := func() *FlagRegistry {
		r := NewDefaultFlagRegistry()
		require.NoError(t, r.Register(NewBooleanFlag("shop-open")))
		return r
	}

	// Сохранение с зарегистрированным флагом
	first := NewRegionContainer(withShop(), driver)
	m, err := first.Load(ctx, "world")
	require.NoError(t, err)
	market := mustCuboid(t, "market", BlockVector{}, BlockVector{X: 4, Y: 4, Z: 4})
	require.NoError(t, market.SetFlag(first.Registry().Get("shop-open"), true))
	m.AddRegion(market)
	require.NoError(t, first.SaveAll(ctx))

	// Загрузка без флага и пересохранение мира
	plain := NewRegionContainer(NewDefaultFlagRegistry(), driver)
	m, err = plain.Load(ctx, "world")
	require.NoError(t, err)
	m.AddRegion(mustCuboid(t, "other", BlockVector{X: 10}, BlockVector{X: 12, Y: 2, Z: 2}))
	require.NoError(t, plain.SaveAll(ctx))

	// Флаг снова зарегистрирован - значение на месте
	registry := withShop()
	again := NewRegionContainer(registry, driver)
	m, err = again.Load(ctx, "world")
	require.NoError(t, err)
	got, ok := m.GetRegion("market")
	require.True(t, ok)
	assert.Equal(t, true, got.Flag(registry.Get("shop-open")))
}

func TestRegion_SetFlagReplacesUnregisteredValue(t *testing.T) {
	r := mustCuboid(t, "r", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1})
	r.keepUnknownFlag("Shop-Open", "stale")

	shop := NewStringFlag("shop-open")
	require.NoError(t, r.SetFlag(shop, "fresh"))

	rec, err := EncodeRegion(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"shop-open": "fresh"}, rec.Flags)
}
