package protection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagRegistry_RegisterAndGet(t *testing.T) {
	r := NewFlagRegistry()
	shop := NewStateFlag("Shop-Open", Allow)
	require.NoError(t, r.Register(shop))

	assert.Same(t, shop, r.Get("shop-open"))
	assert.Same(t, shop.RegionGroupFlag(), r.Get("SHOP-OPEN-group"))
	assert.Nil(t, r.Get("shop"))

	err := r.Register(NewBooleanFlag("shop-open"))
	assert.ErrorIs(t, err, ErrFlagConflict)
	err = r.Register(NewStringFlag("shop-open-group"))
	assert.ErrorIs(t, err, ErrFlagConflict)
	assert.Equal(t, 1, r.Size())
}

func TestFlagRegistry_Lock(t *testing.T) {
	r := NewDefaultFlagRegistry()
	before := r.Size()
	assert.False(t, r.IsLocked())

	r.Lock()
	assert.True(t, r.IsLocked())
	assert.ErrorIs(t, r.Register(NewIntegerFlag("late")), ErrRegistryLocked)
	assert.Equal(t, before, r.Size())
	assert.Same(t, PvP, r.Get("PVP"))
}

func TestFlagRegistry_AllSorted(t *testing.T) {
	r := NewFlagRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(NewStringFlag(name)))
	}
	var names []string
	for _, f := range r.All() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}
