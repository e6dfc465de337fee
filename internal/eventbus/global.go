package eventbus

import "sync"

var (
	globalBus   EventBus
	globalBusMu sync.RWMutex
)

// Init устанавливает глобальную шину.
func Init(bus EventBus) {
	globalBusMu.Lock()
	globalBus = bus
	globalBusMu.Unlock()
}

// Global возвращает глобальную шину или nil.
func Global() EventBus {
	globalBusMu.RLock()
	defer globalBusMu.RUnlock()
	return globalBus
}
