package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed - публикация в закрытую шину
var ErrClosed = errors.New("event bus is closed")

// Типы событий об изменении регионов
const (
	TypeRegionAdded   = "RegionAdded"
	TypeRegionRemoved = "RegionRemoved"
)

// Envelope - событие шины; World вынесен наружу, чтобы фильтровать без разбора Payload
type Envelope struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	EventType string    `json:"event_type"`
	World     string    `json:"world"`
	Version   int       `json:"version"`
	Payload   []byte    `json:"payload"`
}

// RegionEvent - полезная нагрузка событий RegionAdded / RegionRemoved
type RegionEvent struct {
	World   string   `json:"world"`
	Regions []string `json:"regions"`
}

// NewRegionEnvelope создаёт событие об изменении регионов мира
func NewRegionEnvelope(source, eventType, world string, ids []string) (*Envelope, error) {
	data, err := json.Marshal(RegionEvent{World: world, Regions: ids})
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		World:     world,
		Version:   1,
		Payload:   data,
	}, nil
}

// DecodeRegionEvent разбирает полезную нагрузку события региона
func DecodeRegionEvent(ev *Envelope) (RegionEvent, error) {
	var re RegionEvent
	err := json.Unmarshal(ev.Payload, &re)
	return re, err
}

// Filter отбирает события; пустое поле пропускает любые значения
type Filter struct {
	Types   []string
	Sources []string
	Worlds  []string
}

func (f Filter) match(ev *Envelope) bool {
	in := func(val string, allowed []string) bool {
		return len(allowed) == 0 || slices.Contains(allowed, val)
	}
	return in(ev.EventType, f.Types) && in(ev.Source, f.Sources) && in(ev.World, f.Worlds)
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats - счётчики шины с момента создания
type Stats struct {
	Published uint64
	Consumed  uint64
	// Dropped - события, не принятые шиной (истёк контекст публикации, ошибка сети)
	Dropped  uint64
	InFlight int
}

// EventBus - шина событий регионов (in-memory или JetStream)
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

type memoryBus struct {
	mu          sync.Mutex
	subscribers map[int]*subscriber
	nextID      int
	stats       Stats

	buffer chan *Envelope
	done   chan struct{}

	closeMu sync.RWMutex
	closed  bool
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory шину с буфером capacity.
// Подписчики получают события по одному, в порядке публикации. Если буфер
// заполнен, Publish ждёт места до отмены ctx.
func NewMemoryBus(capacity int) EventBus {
	if capacity <= 0 {
		capacity = 1024
	}
	mb := &memoryBus{
		subscribers: make(map[int]*subscriber),
		buffer:      make(chan *Envelope, capacity),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.closeMu.RLock()
	defer mb.closeMu.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.buffer <- ev:
		mb.count(func(s *Stats) { s.Published++ })
		return nil
	case <-ctx.Done():
		mb.count(func(s *Stats) { s.Dropped++ })
		return ctx.Err()
	}
}

func (mb *memoryBus) count(fn func(*Stats)) {
	mb.mu.Lock()
	fn(&mb.stats)
	mb.mu.Unlock()
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.closeMu.RLock()
	defer mb.closeMu.RUnlock()
	if mb.closed {
		return nil, ErrClosed
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = &subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close прекращает приём событий и дожидается доставки уже принятых
func (mb *memoryBus) Close() error {
	mb.closeMu.Lock()
	if mb.closed {
		mb.closeMu.Unlock()
		return nil
	}
	mb.closed = true
	close(mb.buffer)
	mb.closeMu.Unlock()

	<-mb.done
	return nil
}

func (mb *memoryBus) dispatchLoop() {
	defer close(mb.done)

	for ev := range mb.buffer {
		// Подписчики в порядке подписки
		mb.mu.Lock()
		ids := make([]int, 0, len(mb.subscribers))
		for id := range mb.subscribers {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		subs := make([]*subscriber, len(ids))
		for i, id := range ids {
			subs[i] = mb.subscribers[id]
		}
		mb.mu.Unlock()

		for _, sub := range subs {
			if sub.ctx.Err() != nil || !sub.filter.match(ev) {
				continue
			}
			sub.handler(sub.ctx, ev)
			mb.count(func(s *Stats) { s.Consumed++ })
		}
	}
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
}
