package protection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCuboid(t *testing.T, id string, a, b BlockVector) *Region {
	t.Helper()
	r, err := NewCuboidRegion(id, a, b)
	require.NoError(t, err)
	return r
}

func TestCuboidRegion_NormalizesCorners(t *testing.T) {
	r := mustCuboid(t, "Spawn", BlockVector{X: 10, Y: 80, Z: -5}, BlockVector{X: -10, Y: 0, Z: 5})

	assert.Equal(t, "spawn", r.ID())
	assert.Equal(t, BlockVector{X: -10, Y: 0, Z: -5}, r.MinimumPoint())
	assert.Equal(t, BlockVector{X: 10, Y: 80, Z: 5}, r.MaximumPoint())
	assert.Len(t, r.Points(), 4)
}

func TestCuboidRegion_ContainsBoundaries(t *testing.T) {
	r := mustCuboid(t, "box", BlockVector{X: 0, Y: 0, Z: 0}, BlockVector{X: 10, Y: 10, Z: 10})

	assert.True(t, r.Contains(BlockVector{X: 0, Y: 0, Z: 0}))
	assert.True(t, r.Contains(BlockVector{X: 10, Y: 10, Z: 10}))
	assert.True(t, r.Contains(BlockVector{X: 5, Y: 5, Z: 5}))
	assert.False(t, r.Contains(BlockVector{X: 11, Y: 5, Z: 5}))
	assert.False(t, r.Contains(BlockVector{X: 5, Y: -1, Z: 5}))
}

func TestPolygonalRegion_Contains(t *testing.T) {
	// Треугольник с вершинами (0,0), (10,0), (0,10)
	r, err := NewPolygonalRegion("tri", []BlockVector2D{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 0, Z: 10}}, 70, 60)
	require.NoError(t, err)

	assert.Equal(t, 60, r.MinimumPoint().Y)
	assert.Equal(t, 70, r.MaximumPoint().Y)

	assert.True(t, r.Contains(BlockVector{X: 2, Y: 65, Z: 2}))
	assert.True(t, r.Contains(BlockVector{X: 5, Y: 60, Z: 5}), "точка на гипотенузе")
	assert.True(t, r.Contains(BlockVector{X: 0, Y: 70, Z: 0}), "вершина")
	assert.False(t, r.Contains(BlockVector{X: 8, Y: 65, Z: 8}))
	assert.False(t, r.Contains(BlockVector{X: 2, Y: 71, Z: 2}))
}

func TestPolygonalRegion_TooFewPoints(t *testing.T) {
	_, err := NewPolygonalRegion("line", []BlockVector2D{{X: 0, Z: 0}, {X: 1, Z: 1}}, 0, 10)
	assert.True(t, errors.Is(err, ErrInvalidShape))
}

func TestRegion_InvalidID(t *testing.T) {
	_, err := NewCuboidRegion("bad id!", BlockVector{}, BlockVector{})
	assert.True(t, errors.Is(err, ErrInvalidRegionID))

	_, err = NewGlobalRegion(GlobalRegionID)
	assert.NoError(t, err)
}

func TestGlobalRegion_ContainsNothing(t *testing.T) {
	g, err := NewGlobalRegion(GlobalRegionID)
	require.NoError(t, err)

	assert.False(t, g.Contains(BlockVector{}))
	assert.Empty(t, g.Points())
}

func TestRegion_SetParentRejectsCycle(t *testing.T) {
	a := mustCuboid(t, "a", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1})
	b := mustCuboid(t, "b", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1})
	c := mustCuboid(t, "c", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1})

	require.NoError(t, b.SetParent(a))
	require.NoError(t, c.SetParent(b))

	err := a.SetParent(c)
	assert.True(t, errors.Is(err, ErrCircularParent))
	assert.True(t, errors.Is(a.SetParent(a), ErrCircularParent))
	assert.Nil(t, a.Parent())
}

func TestRegion_SetFlagValidatesValue(t *testing.T) {
	r := mustCuboid(t, "r", BlockVector{}, BlockVector{X: 1, Y: 1, Z: 1})

	assert.True(t, errors.Is(r.SetFlag(PvP, "deny"), ErrInvalidValue))
	require.NoError(t, r.SetFlag(PvP, Deny))
	assert.Equal(t, Deny, r.Flag(PvP))

	require.NoError(t, r.SetFlag(PvP, nil))
	assert.Nil(t, r.Flag(PvP))
	assert.Empty(t, r.Flags())
}

func TestRegion_Intersects(t *testing.T) {
	box := mustCuboid(t, "box", BlockVector{X: 0, Y: 0, Z: 0}, BlockVector{X: 10, Y: 10, Z: 10})
	far := mustCuboid(t, "far", BlockVector{X: 20, Y: 0, Z: 20}, BlockVector{X: 30, Y: 10, Z: 30})
	touching := mustCuboid(t, "touch", BlockVector{X: 10, Y: 10, Z: 10}, BlockVector{X: 12, Y: 12, Z: 12})

	tri, err := NewPolygonalRegion("tri", []BlockVector2D{{X: 5, Z: 5}, {X: 15, Z: 5}, {X: 5, Z: 15}}, 0, 10)
	require.NoError(t, err)

	// Ограничивающий прямоугольник пересекается, сам треугольник - нет
	corner := mustCuboid(t, "corner", BlockVector{X: 13, Y: 0, Z: 13}, BlockVector{X: 15, Y: 10, Z: 15})

	assert.True(t, box.Intersects(touching))
	assert.False(t, box.Intersects(far))
	assert.True(t, box.Intersects(tri))
	assert.False(t, tri.Intersects(corner))
}

func TestRegion_Association(t *testing.T) {
	owner := &LocalPlayer{ID: newID(1), Nick: "owner"}
	member := &LocalPlayer{ID: newID(2), Nick: "member"}
	vip := &LocalPlayer{ID: newID(3), Nick: "vip", Groups: []string{"VIP"}}
	stranger := &LocalPlayer{ID: newID(4), Nick: "stranger"}

	parent := mustCuboid(t, "parent", BlockVector{}, BlockVector{X: 10, Y: 10, Z: 10})
	parent.Owners().AddPlayer(owner.ID)
	parent.Members().AddGroup("vip")

	child := mustCuboid(t, "child", BlockVector{}, BlockVector{X: 5, Y: 5, Z: 5})
	child.Members().AddPlayer(member.ID)
	require.NoError(t, child.SetParent(parent))

	assert.Equal(t, Owner, child.Association(owner))
	assert.Equal(t, Member, child.Association(member))
	assert.Equal(t, Member, child.Association(vip))
	assert.Equal(t, NonMember, child.Association(stranger))
	assert.Equal(t, NonMember, child.Association(nil))
	assert.Equal(t, NonMember, parent.Association(member))
}
