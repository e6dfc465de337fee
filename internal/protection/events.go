package protection

import (
	"context"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/eventbus"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
)

// EventBusListener публикует изменения регионов в шину событий
type EventBusListener struct {
	bus     eventbus.EventBus
	source  string
	timeout time.Duration
}

// NewEventBusListener создаёт слушателя; source попадает в Envelope.Source
func NewEventBusListener(bus eventbus.EventBus, source string) *EventBusListener {
	return &EventBusListener{bus: bus, source: source, timeout: 2 * time.Second}
}

func (l *EventBusListener) RegionAdded(world string, r *Region) {
	l.publish(eventbus.TypeRegionAdded, world, []string{r.ID()})
}

func (l *EventBusListener) RegionRemoved(world string, removed []*Region) {
	ids := make([]string, len(removed))
	for i, r := range removed {
		ids[i] = r.ID()
	}
	l.publish(eventbus.TypeRegionRemoved, world, ids)
}

func (l *EventBusListener) publish(eventType, world string, ids []string) {
	ev, err := eventbus.NewRegionEnvelope(l.source, eventType, world, ids)
	if err != nil {
		logging.Warn("⚠️ Не удалось сформировать событие %s: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := l.bus.Publish(ctx, ev); err != nil {
		logging.Warn("⚠️ Не удалось опубликовать событие %s: %v", eventType, err)
	}
}
