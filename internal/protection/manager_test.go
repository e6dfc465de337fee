package protection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	mu      sync.Mutex
	added   []string
	removed [][]string
}

func (l *recordingListener) RegionAdded(world string, r *Region) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.added = append(l.added, world+"/"+r.ID())
}

func (l *recordingListener) RegionRemoved(world string, removed []*Region) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, len(removed))
	for i, r := range removed {
		ids[i] = r.ID()
	}
	l.removed = append(l.removed, ids)
}

func newTestManager() *RegionManager {
	return NewRegionManager("world", NewDefaultFlagRegistry(), store.NewMemoryDriver())
}

func TestRegionManager_AddGet(t *testing.T) {
	m := newTestManager()
	l := &recordingListener{}
	m.AddListener(l)

	r := mustCuboid(t, "Spawn", BlockVector{}, BlockVector{X: 10, Y: 10, Z: 10})
	m.AddRegion(r)

	got, ok := m.GetRegion("SPAWN")
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.True(t, m.HasRegion("spawn"))
	assert.Equal(t, 1, m.Size())
	assert.Contains(t, m.Regions(), "spawn")
	assert.Equal(t, []string{"world/spawn"}, l.added)

	_, ok = m.GetRegion("missing")
	assert.False(t, ok)
}

func TestRegionManager_AddReplacesSameID(t *testing.T) {
	m := newTestManager()
	m.AddRegion(mustCuboid(t, "r", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1}))
	m.AddRegion(mustCuboid(t, "r", BlockVector{X: 100}, BlockVector{X: 101, Y: 1, Z: 1}))

	assert.Equal(t, 1, m.Size())
	assert.Zero(t, m.ApplicableRegions(BlockVector{}).Size())
	assert.Equal(t, 1, m.ApplicableRegions(BlockVector{X: 100}).Size())
}

func TestRegionManager_ApplicableRegions(t *testing.T) {
	m := newTestManager()
	m.AddRegion(mustCuboid(t, "a", BlockVector{X: 0, Y: 0, Z: 0}, BlockVector{X: 20, Y: 20, Z: 20}))
	m.AddRegion(mustCuboid(t, "b", BlockVector{X: 15, Y: 0, Z: 15}, BlockVector{X: 40, Y: 20, Z: 40}))
	m.AddRegion(mustCuboid(t, "huge", BlockVector{X: -100000, Y: 0, Z: -100000}, BlockVector{X: 100000, Y: 255, Z: 100000}))

	assert.Equal(t, []string{"a", "huge"}, regionIDs(m.ApplicableRegions(BlockVector{X: 1, Y: 1, Z: 1})))
	assert.Equal(t, []string{"a", "b", "huge"}, regionIDs(m.ApplicableRegions(BlockVector{X: 16, Y: 1, Z: 16})))
	assert.Equal(t, []string{"huge"}, regionIDs(m.ApplicableRegions(BlockVector{X: -50, Y: 1, Z: -50})))
	assert.Empty(t, regionIDs(m.ApplicableRegions(BlockVector{X: -50, Y: 300, Z: -50})))

	box := mustCuboid(t, "temp", BlockVector{X: 30, Y: 0, Z: 30}, BlockVector{X: 35, Y: 5, Z: 35})
	assert.Equal(t, []string{"b", "huge"}, regionIDs(m.ApplicableRegionsFor(box)))
	assert.False(t, m.HasRegion("temp"))
}

func TestRegionManager_GlobalFallback(t *testing.T) {
	m := newTestManager()
	_, ok := m.GlobalRegion()
	assert.False(t, ok)

	g := m.EnsureGlobalRegion()
	require.NoError(t, g.SetFlag(PvP, Deny))
	assert.Same(t, g, m.EnsureGlobalRegion())

	set := m.ApplicableRegions(BlockVector{X: 1000, Y: 64, Z: 1000})
	assert.Zero(t, set.Size())
	assert.Equal(t, Deny, set.QueryValue(nil, PvP))
}

func TestRegionManager_RemoveChildren(t *testing.T) {
	m := newTestManager()
	l := &recordingListener{}
	m.AddListener(l)

	parent := mustCuboid(t, "parent", BlockVector{}, BlockVector{X: 10, Y: 10, Z: 10})
	child := mustCuboid(t, "child", BlockVector{}, BlockVector{X: 5, Y: 5, Z: 5})
	grandchild := mustCuboid(t, "grandchild", BlockVector{}, BlockVector{X: 2, Y: 2, Z: 2})
	other := mustCuboid(t, "other", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1})
	require.NoError(t, child.SetParent(parent))
	require.NoError(t, grandchild.SetParent(child))
	for _, r := range []*Region{parent, child, grandchild, other} {
		m.AddRegion(r)
	}

	removed := m.RemoveRegion("PARENT", RemoveChildren)
	assert.ElementsMatch(t, []*Region{parent, child, grandchild}, removed)
	assert.Equal(t, 1, m.Size())
	assert.True(t, m.HasRegion("other"))
	assert.Equal(t, []string{"other"}, regionIDs(m.ApplicableRegions(BlockVector{X: 1, Y: 1, Z: 1})))
	require.Len(t, l.removed, 1)
	assert.ElementsMatch(t, []string{"parent", "child", "grandchild"}, l.removed[0])

	assert.Nil(t, m.RemoveRegion("parent", RemoveChildren))
}

func TestRegionManager_RemoveUnsetsParent(t *testing.T) {
	m := newTestManager()
	parent := mustCuboid(t, "parent", BlockVector{}, BlockVector{X: 10, Y: 10, Z: 10})
	child := mustCuboid(t, "child", BlockVector{}, BlockVector{X: 5, Y: 5, Z: 5})
	require.NoError(t, child.SetParent(parent))
	m.AddRegion(parent)
	m.AddRegion(child)

	removed := m.RemoveRegion("parent", UnsetParentInChildren)
	assert.Equal(t, []*Region{parent}, removed)
	assert.True(t, m.HasRegion("child"))
	assert.Nil(t, child.Parent())
}

func TestRegionManager_SaveLoad(t *testing.T) {
	ctx := context.Background()
	driver := store.NewMemoryDriver()
	registry := NewDefaultFlagRegistry()

	m := NewRegionManager("world", registry, driver)
	parent := mustCuboid(t, "parent", BlockVector{}, BlockVector{X: 10, Y: 10, Z: 10})
	child, err := NewPolygonalRegion("child", []BlockVector2D{{X: 0, Z: 0}, {X: 4, Z: 0}, {X: 0, Z: 4}}, 0, 5)
	require.NoError(t, err)
	require.NoError(t, child.SetParent(parent))
	require.NoError(t, parent.SetFlag(PvP, Deny))
	m.AddRegion(parent)
	m.AddRegion(child)
	assert.True(t, m.IsDirty())

	require.NoError(t, m.SaveChanges(ctx))
	assert.False(t, m.IsDirty())

	loaded := NewRegionManager("world", registry, driver)
	require.NoError(t, loaded.Load(ctx))
	assert.Equal(t, 2, loaded.Size())

	c, ok := loaded.GetRegion("child")
	require.True(t, ok)
	require.NotNil(t, c.Parent())
	assert.Equal(t, "parent", c.Parent().ID())
	assert.Equal(t, Polygon, c.Type())
	assert.Equal(t, Deny, loaded.ApplicableRegions(BlockVector{X: 1, Y: 1, Z: 1}).QueryValue(nil, PvP))
	assert.False(t, loaded.IsDirty())
}

// failingDriver отказывает в записи, пока fail == true
type failingDriver struct {
	*store.MemoryDriver
	fail bool
}

func (d *failingDriver) Save(ctx context.Context, world string, records []store.RegionRecord) error {
	if d.fail {
		return errors.New("disk full")
	}
	return d.MemoryDriver.Save(ctx, world, records)
}

func TestRegionManager_FailedSaveStaysDirty(t *testing.T) {
	ctx := context.Background()
	driver := &failingDriver{MemoryDriver: store.NewMemoryDriver(), fail: true}

	m := NewRegionManager("world", NewDefaultFlagRegistry(), driver)
	m.AddRegion(mustCuboid(t, "spawn", BlockVector{}, BlockVector{X: 4, Y: 4, Z: 4}))

	require.Error(t, m.SaveChanges(ctx))
	assert.True(t, m.IsDirty(), "changes must be retried by the next save")

	driver.fail = false
	require.NoError(t, m.SaveChanges(ctx))
	assert.False(t, m.IsDirty())

	records, err := driver.Load(ctx, "world")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func regionIDs(set *ApplicableRegionSet) []string {
	out := []string{}
	for _, r := range set.Regions() {
		out = append(out, r.ID())
	}
	return out
}
