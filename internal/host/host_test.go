package host

import (
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/vec"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_WorldsAndPlugins(t *testing.T) {
	s := NewServer("world", "world_nether")

	w, ok := s.World("WORLD")
	require.True(t, ok, "поиск мира не должен зависеть от регистра")
	assert.Equal(t, "world", w.Name)

	_, ok = s.World("world_the_end")
	assert.False(t, ok)

	s.LoadWorld("world_the_end")
	assert.Len(t, s.Worlds(), 3)

	s.RegisterPlugin(&Plugin{Name: "WorldGuard", Version: "7.0.9"})
	p, ok := s.Plugin("worldguard")
	require.True(t, ok)
	assert.Equal(t, "7.0.9", p.Version)
}

func TestLocation_Block(t *testing.T) {
	loc := NewLocation(World{Name: "world"}, -0.5, 64.99, 10.01)
	assert.Equal(t, vec.Vec3{X: -1, Y: 64, Z: 10}, loc.Block())
}

func TestPlayer_InGroup(t *testing.T) {
	p := &Player{ID: uuid.New(), Name: "Steve", Groups: []string{"Builders"}}
	assert.True(t, p.InGroup("builders"))
	assert.False(t, p.InGroup("admins"))
}
