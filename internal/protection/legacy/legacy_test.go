package legacy

import (
	"context"
	"errors"
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_ToBlockVectorFloors(t *testing.T) {
	assert.Equal(t, protection.BlockVector{X: -1, Y: 64, Z: 2}, NewVector(-0.5, 64.9, 2.0).ToBlockVector())
}

func TestDefaultFlags_Static(t *testing.T) {
	require.NotEmpty(t, DefaultFlags())
	assert.Same(t, protection.PvP, FuzzyMatchFlag("PVP"))
	assert.Nil(t, FuzzyMatchFlag("custom"))

	err := defaultFlags.Register(protection.NewBooleanFlag("custom"))
	assert.True(t, errors.Is(err, protection.ErrRegistryLocked))
}

func TestPlugin_RegionManager(t *testing.T) {
	ctx := context.Background()
	p := NewPlugin("6.2.2", store.NewMemoryDriver())
	require.NoError(t, p.LoadWorlds(ctx, "world"))

	assert.Nil(t, p.RegionManager("nether"))
	rm := p.RegionManager("world")
	require.NotNil(t, rm)

	parent, err := NewCuboid("parent", NewVector(0, 0, 0), NewVector(9.9, 9.9, 9.9))
	require.NoError(t, err)
	child, err := NewPolygon("child", []BlockVector2D{{0, 0}, {5, 0}, {0, 5}}, 0, 5)
	require.NoError(t, err)
	require.NoError(t, child.SetParent(parent))
	rm.AddRegion(parent)
	rm.AddRegion(child)

	assert.Equal(t, protection.BlockVector{X: 9, Y: 9, Z: 9}, rm.GetRegion("parent").MaximumPoint())
	assert.Equal(t, 2, rm.GetApplicableRegions(NewVector(1.5, 1.5, 1.5)).Size())
	assert.Len(t, rm.GetRegions(), 2)

	removed := rm.RemoveRegion("parent")
	assert.Len(t, removed, 2)
	assert.False(t, rm.HasRegion("child"))
	assert.Nil(t, rm.GetRegion("parent"))
}

func TestPlugin_WrapPlayer(t *testing.T) {
	p := NewPlugin("6.2.2", nil)
	player := &host.Player{ID: uuid.New(), Name: "Steve", Groups: []string{"admin"}}

	lp := p.WrapPlayer(player)
	assert.Equal(t, player.ID, lp.UniqueID())
	assert.Equal(t, "Steve", lp.Name())
	assert.True(t, lp.InGroup("ADMIN"))
}
