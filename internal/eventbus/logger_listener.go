package eventbus

import (
	"context"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		re, err := DecodeRegionEvent(ev)
		if err != nil {
			logging.Debug("[EventBus] %s %s src=%s size=%dB", ev.ID, ev.EventType, ev.Source, len(ev.Payload))
			return
		}
		logging.Debug("[EventBus] %s %s world=%s regions=[%s]", ev.ID, ev.EventType, re.World, strings.Join(re.Regions, ","))
	})
	if err != nil {
		return nil, err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
