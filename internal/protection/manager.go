package protection

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
)

// RemovalStrategy определяет судьбу дочерних регионов при удалении родителя
type RemovalStrategy int

const (
	// UnsetParentInChildren - дети остаются, наследование снимается
	UnsetParentInChildren RemovalStrategy = iota
	// RemoveChildren - дети удаляются рекурсивно
	RemoveChildren
)

// ChangeListener получает уведомления об изменениях регионов мира
type ChangeListener interface {
	RegionAdded(world string, r *Region)
	RegionRemoved(world string, removed []*Region)
}

// RegionManager хранит регионы одного мира
type RegionManager struct {
	world    string
	registry *FlagRegistry
	driver   store.Driver

	// saveMu упорядочивает сохранения: более старый снимок не перезапишет новый
	saveMu sync.Mutex

	mu      sync.RWMutex
	regions map[string]*Region
	index   *spatialIndex
	dirty   bool

	listenersMu sync.RWMutex
	listeners   []ChangeListener
}

// NewRegionManager создаёт менеджер мира. driver может быть nil - тогда Load/Save ничего не делают.
func NewRegionManager(world string, registry *FlagRegistry, driver store.Driver) *RegionManager {
	return &RegionManager{
		world:    world,
		registry: registry,
		driver:   driver,
		regions:  make(map[string]*Region),
		index:    newSpatialIndex(),
	}
}

// World возвращает имя мира
func (m *RegionManager) World() string { return m.world }

// AddListener подписывает слушателя на изменения
func (m *RegionManager) AddListener(l ChangeListener) {
	m.listenersMu.Lock()
	m.listeners = append(m.listeners, l)
	m.listenersMu.Unlock()
}

// AddRegion добавляет регион; регион с тем же id заменяется
func (m *RegionManager) AddRegion(r *Region) {
	m.mu.Lock()
	m.regions[r.ID()] = r
	m.index.insert(r)
	m.dirty = true
	m.mu.Unlock()

	logging.Debug("🧱 Регион %s добавлен в мир %s", r.ID(), m.world)

	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, l := range m.listeners {
		l.RegionAdded(m.world, r)
	}
}

// GetRegion ищет регион по id без учёта регистра
func (m *RegionManager) GetRegion(id string) (*Region, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regions[normalizeID(id)]
	return r, ok
}

// HasRegion проверяет наличие региона
func (m *RegionManager) HasRegion(id string) bool {
	_, ok := m.GetRegion(id)
	return ok
}

// Regions возвращает снимок всех регионов по id
func (m *RegionManager) Regions() map[string]*Region {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*Region, len(m.regions))
	for id, r := range m.regions {
		out[id] = r
	}
	return out
}

// Size возвращает число регионов мира
func (m *RegionManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regions)
}

// GlobalRegion возвращает глобальный регион мира, если он создан
func (m *RegionManager) GlobalRegion() (*Region, bool) {
	return m.GetRegion(GlobalRegionID)
}

// EnsureGlobalRegion возвращает глобальный регион, создавая его при необходимости
func (m *RegionManager) EnsureGlobalRegion() *Region {
	if r, ok := m.GlobalRegion(); ok {
		return r
	}
	r, _ := NewGlobalRegion(GlobalRegionID)
	m.AddRegion(r)
	return r
}

// RemoveRegion удаляет регион и, в зависимости от стратегии, его потомков.
// Возвращает все удалённые регионы; nil, если региона нет.
func (m *RegionManager) RemoveRegion(id string, strategy RemovalStrategy) []*Region {
	m.mu.Lock()
	target, ok := m.regions[normalizeID(id)]
	if !ok {
		m.mu.Unlock()
		return nil
	}

	removed := []*Region{target}
	queue := []*Region{target}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range m.sortedLocked() {
			if child.Parent() != parent {
				continue
			}
			if strategy == RemoveChildren {
				removed = append(removed, child)
				queue = append(queue, child)
			} else {
				child.SetParent(nil)
			}
		}
	}

	for _, r := range removed {
		delete(m.regions, r.ID())
		m.index.remove(r.ID())
	}
	m.dirty = true
	m.mu.Unlock()

	logging.Debug("🗑️ Удалено регионов в мире %s: %d (%s)", m.world, len(removed), target.ID())

	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, l := range m.listeners {
		l.RegionRemoved(m.world, removed)
	}
	return removed
}

func (m *RegionManager) sortedLocked() []*Region {
	out := make([]*Region, 0, len(m.regions))
	for _, r := range m.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ApplicableRegions возвращает регионы, содержащие точку
func (m *RegionManager) ApplicableRegions(pt BlockVector) *ApplicableRegionSet {
	global, _ := m.GlobalRegion()
	return NewApplicableRegionSet(m.index.queryPoint(pt), global)
}

// ApplicableRegionsFor возвращает регионы, пересекающиеся с заданным (он сам может не входить в менеджер)
func (m *RegionManager) ApplicableRegionsFor(r *Region) *ApplicableRegionSet {
	global, _ := m.GlobalRegion()
	if r.Type() == Global {
		return NewApplicableRegionSet(nil, global)
	}
	return NewApplicableRegionSet(m.index.queryRegion(r), global)
}

// Load заменяет регионы мира содержимым хранилища
func (m *RegionManager) Load(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}

	records, err := m.driver.Load(ctx, m.world)
	if err != nil {
		return fmt.Errorf("загрузка регионов мира %s: %w", m.world, err)
	}

	regions, decodeErr := DecodeRegions(m.world, records, m.registry)

	m.mu.Lock()
	m.regions = make(map[string]*Region, len(regions))
	m.index = newSpatialIndex()
	for _, r := range regions {
		m.regions[r.ID()] = r
		m.index.insert(r)
	}
	m.dirty = false
	m.mu.Unlock()

	logging.Info("📂 Загружено %d регионов мира %s (%s)", len(regions), m.world, m.driver.Name())
	if decodeErr != nil {
		return fmt.Errorf("загрузка регионов мира %s: %w", m.world, decodeErr)
	}
	return nil
}

// Save записывает все регионы мира
func (m *RegionManager) Save(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	// Флаги сбрасываются до снимка: правка во время записи снова пометит мир
	m.mu.Lock()
	regions := m.sortedLocked()
	m.dirty = false
	for _, r := range regions {
		r.setDirty(false)
	}
	m.mu.Unlock()

	records := make([]store.RegionRecord, 0, len(regions))
	for _, r := range regions {
		rec, err := EncodeRegion(r)
		if err != nil {
			m.markDirty()
			return err
		}
		records = append(records, rec)
	}

	if err := m.driver.Save(ctx, m.world, records); err != nil {
		m.markDirty()
		return fmt.Errorf("сохранение регионов мира %s: %w", m.world, err)
	}

	logging.Debug("💾 Сохранено %d регионов мира %s", len(records), m.world)
	return nil
}

// SaveChanges сохраняет мир, только если что-то изменилось
func (m *RegionManager) SaveChanges(ctx context.Context) error {
	if !m.IsDirty() {
		return nil
	}
	return m.Save(ctx)
}

func (m *RegionManager) markDirty() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

// IsDirty сообщает о несохранённых изменениях в мире или его регионах
func (m *RegionManager) IsDirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dirty {
		return true
	}
	for _, r := range m.regions {
		if r.IsDirty() {
			return true
		}
	}
	return false
}
