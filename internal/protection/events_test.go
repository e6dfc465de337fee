package protection

import (
	"context"
	"testing"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusListener_PublishesChanges(t *testing.T) {
	bus := eventbus.NewMemoryBus(16)
	defer bus.Close()

	received := make(chan *eventbus.Envelope, 4)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		received <- ev
	})
	require.NoError(t, err)

	m := newTestManager()
	m.AddListener(NewEventBusListener(bus, "test"))

	parent := mustCuboid(t, "parent", BlockVector{}, BlockVector{X: 4, Y: 4, Z: 4})
	child := mustCuboid(t, "child", BlockVector{}, BlockVector{X: 2, Y: 2, Z: 2})
	require.NoError(t, child.SetParent(parent))
	m.AddRegion(parent)
	m.AddRegion(child)
	m.RemoveRegion("parent", RemoveChildren)

	want := []struct {
		typ     string
		regions []string
	}{
		{eventbus.TypeRegionAdded, []string{"parent"}},
		{eventbus.TypeRegionAdded, []string{"child"}},
		{eventbus.TypeRegionRemoved, []string{"parent", "child"}},
	}

	for _, w := range want {
		select {
		case ev := <-received:
			assert.Equal(t, w.typ, ev.EventType)
			assert.Equal(t, "test", ev.Source)
			assert.NotEmpty(t, ev.ID)
			assert.Equal(t, "world", ev.World)

			re, err := eventbus.DecodeRegionEvent(ev)
			require.NoError(t, err)
			assert.Equal(t, "world", re.World)
			assert.ElementsMatch(t, w.regions, re.Regions)
		case <-time.After(2 * time.Second):
			t.Fatalf("событие %s не получено", w.typ)
		}
	}
}
