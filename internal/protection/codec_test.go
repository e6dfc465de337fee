package protection

import (
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTripAllFlagKinds(t *testing.T) {
	registry := NewDefaultFlagRegistry()
	owner := newID(7)

	r := mustCuboid(t, "shop", BlockVector{X: 1, Y: 2, Z: 3}, BlockVector{X: 4, Y: 5, Z: 6})
	r.SetPriority(3)
	r.Owners().AddPlayer(owner)
	r.Members().AddGroup("Builders")

	values := map[Flag]any{
		PvP:                     Deny,
		Buyable:                 true,
		Greeting:                "hi",
		HealAmount:              2,
		Price:                   12.5,
		Teleport:                Location{World: "world", X: 1.5, Y: 64, Z: -3.25, Yaw: 90, Pitch: 10},
		BlockedCmds:             NewStringSet("/tp", "/home"),
		Build.RegionGroupFlag(): GroupMembers,
	}
	for f, v := range values {
		require.NoError(t, r.SetFlag(f, v))
	}

	rec, err := EncodeRegion(r)
	require.NoError(t, err)
	assert.Equal(t, "cuboid", rec.Type)
	assert.Equal(t, "deny", rec.Flags["pvp"])
	assert.Equal(t, "members", rec.Flags["build-group"])
	assert.Equal(t, []any{"/home", "/tp"}, rec.Flags["blocked-cmds"])

	decoded, err := DecodeRegions("world", []store.RegionRecord{rec}, registry)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	got := decoded[0]
	assert.Equal(t, "shop", got.ID())
	assert.Equal(t, 3, got.Priority())
	assert.Equal(t, r.MinimumPoint(), got.MinimumPoint())
	assert.Equal(t, r.MaximumPoint(), got.MaximumPoint())
	assert.Equal(t, r.Owners().Players(), got.Owners().Players())
	assert.Equal(t, []string{"builders"}, got.Members().Groups())
	for f, v := range values {
		assert.Equal(t, v, got.Flag(registry.Get(f.Name())), f.Name())
	}
}

func TestCodec_ToleratesBadRecords(t *testing.T) {
	registry := NewDefaultFlagRegistry()

	records := []store.RegionRecord{
		{
			ID:    "ok",
			Type:  "cuboid",
			Min:   &store.Point3{},
			Max:   &store.Point3{X: 1, Y: 1, Z: 1},
			Flags: map[string]any{"pvp": 42, "no-such-flag": "x", "greeting": "hello"},
			Owners: store.DomainRecord{
				Players: []string{"not-a-uuid"},
			},
			Parent: "missing",
		},
		{ID: "broken", Type: "cuboid"},
		{ID: "weird", Type: "sphere"},
	}

	decoded, err := DecodeRegions("world", records, registry)
	require.Error(t, err)
	require.Len(t, decoded, 1)

	r := decoded[0]
	assert.Nil(t, r.Flag(PvP))
	assert.Equal(t, "hello", r.Flag(Greeting))
	assert.Nil(t, r.Parent())
	assert.Zero(t, r.Owners().Size())

	// Незарегистрированный флаг не теряется при обратной записи
	rec, err := EncodeRegion(r)
	require.NoError(t, err)
	assert.Equal(t, "x", rec.Flags["no-such-flag"])
	assert.Equal(t, "hello", rec.Flags["greeting"])
	assert.NotContains(t, rec.Flags, "pvp")
}

func TestCodec_JSONNumbersDecode(t *testing.T) {
	registry := NewDefaultFlagRegistry()
	rec := store.RegionRecord{
		ID:     "n",
		Type:   "poly2d",
		Points: []store.Point2{{X: 0, Z: 0}, {X: 3, Z: 0}, {X: 0, Z: 3}},
		MaxY:   10,
		Flags:  map[string]any{"heal-amount": float64(5), "price": float64(3)},
	}

	decoded, err := DecodeRegions("world", []store.RegionRecord{rec}, registry)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, 5, decoded[0].Flag(HealAmount))
	assert.Equal(t, 3.0, decoded[0].Flag(Price))
}
