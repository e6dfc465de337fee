package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubRegion реализует только методы, нужные множеству
type stubRegion struct {
	WrappedRegion
	world    string
	id       string
	priority int
}

func (s stubRegion) ID() string    { return s.id }
func (s stubRegion) Key() Key      { return Key{World: s.world, ID: s.id} }
func (s stubRegion) Priority() int { return s.priority }

func TestSet_KeyedByWorldAndID(t *testing.T) {
	s := NewSet(
		stubRegion{world: "world", id: "a"},
		stubRegion{world: "world", id: "a", priority: 5},
		stubRegion{world: "nether", id: "a"},
	)

	assert.Len(t, s, 2)
	assert.Equal(t, 5, s[Key{World: "world", ID: "a"}].Priority())
	assert.Equal(t, []string{"a", "a"}, s.IDs())
}

func TestSet_Sorted(t *testing.T) {
	s := NewSet(
		stubRegion{world: "w", id: "b", priority: 1},
		stubRegion{world: "w", id: "a", priority: 1},
		stubRegion{world: "w", id: "z", priority: 10},
	)

	var ids []string
	for _, r := range s.Sorted() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"z", "a", "b"}, ids)
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "cuboid", Cuboid.String())
	assert.Equal(t, "polygon", Polygon.String())
	assert.Equal(t, "global", Global.String())
}
