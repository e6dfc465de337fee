package protection

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Subject - участник, для которого вычисляются флаги (обычно игрок)
type Subject interface {
	UniqueID() uuid.UUID
	Name() string
	InGroup(group string) bool
}

// LocalPlayer - реализация Subject по данным игрока
type LocalPlayer struct {
	ID     uuid.UUID
	Nick   string
	Groups []string
}

func (p *LocalPlayer) UniqueID() uuid.UUID { return p.ID }
func (p *LocalPlayer) Name() string        { return p.Nick }

func (p *LocalPlayer) InGroup(group string) bool {
	for _, g := range p.Groups {
		if strings.EqualFold(g, group) {
			return true
		}
	}
	return false
}

// DefaultDomain - список владельцев или участников региона: игроки и группы
type DefaultDomain struct {
	mu      sync.RWMutex
	players map[uuid.UUID]struct{}
	groups  map[string]struct{}
}

// NewDefaultDomain создаёт пустой домен
func NewDefaultDomain() *DefaultDomain {
	return &DefaultDomain{
		players: make(map[uuid.UUID]struct{}),
		groups:  make(map[string]struct{}),
	}
}

func (d *DefaultDomain) AddPlayer(id uuid.UUID) {
	d.mu.Lock()
	d.players[id] = struct{}{}
	d.mu.Unlock()
}

func (d *DefaultDomain) RemovePlayer(id uuid.UUID) {
	d.mu.Lock()
	delete(d.players, id)
	d.mu.Unlock()
}

func (d *DefaultDomain) AddGroup(group string) {
	d.mu.Lock()
	d.groups[strings.ToLower(group)] = struct{}{}
	d.mu.Unlock()
}

func (d *DefaultDomain) RemoveGroup(group string) {
	d.mu.Lock()
	delete(d.groups, strings.ToLower(group))
	d.mu.Unlock()
}

// Players возвращает игроков домена в стабильном порядке
func (d *DefaultDomain) Players() []uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]uuid.UUID, 0, len(d.players))
	for id := range d.players {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Groups возвращает группы домена по алфавиту
func (d *DefaultDomain) Groups() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.groups))
	for g := range d.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Contains проверяет, входит ли субъект в домен лично или через группу
func (d *DefaultDomain) Contains(s Subject) bool {
	if s == nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.players[s.UniqueID()]; ok {
		return true
	}
	for g := range d.groups {
		if s.InGroup(g) {
			return true
		}
	}
	return false
}

// Size возвращает количество записей домена
func (d *DefaultDomain) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.players) + len(d.groups)
}
