package protection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"golang.org/x/sync/errgroup"
)

// RegionContainer держит менеджеры регионов загруженных миров
type RegionContainer struct {
	registry *FlagRegistry
	driver   store.Driver

	mu        sync.RWMutex
	managers  map[string]*RegionManager
	listeners []ChangeListener
}

// NewRegionContainer создаёт контейнер; driver может быть nil
func NewRegionContainer(registry *FlagRegistry, driver store.Driver) *RegionContainer {
	return &RegionContainer{
		registry: registry,
		driver:   driver,
		managers: make(map[string]*RegionManager),
	}
}

// Registry возвращает реестр флагов, используемый при загрузке
func (c *RegionContainer) Registry() *FlagRegistry { return c.registry }

// AddListener подписывает слушателя на изменения во всех мирах, включая будущие
func (c *RegionContainer) AddListener(l ChangeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, l)
	for _, m := range c.managers {
		m.AddListener(l)
	}
}

// Get возвращает менеджер мира, если мир загружен
func (c *RegionContainer) Get(world string) (*RegionManager, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.managers[strings.ToLower(world)]
	return m, ok
}

// Worlds возвращает имена загруженных миров
func (c *RegionContainer) Worlds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.managers))
	for _, m := range c.managers {
		out = append(out, m.World())
	}
	sort.Strings(out)
	return out
}

// Load создаёт менеджер мира и загружает его регионы. Повторная загрузка возвращает существующий менеджер.
func (c *RegionContainer) Load(ctx context.Context, world string) (*RegionManager, error) {
	if m, ok := c.Get(world); ok {
		return m, nil
	}

	m := NewRegionManager(world, c.registry, c.driver)
	if err := m.Load(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(world)
	if existing, ok := c.managers[key]; ok {
		return existing, nil
	}
	for _, l := range c.listeners {
		m.AddListener(l)
	}
	c.managers[key] = m
	return m, nil
}

// LoadAll загружает миры параллельно
func (c *RegionContainer) LoadAll(ctx context.Context, worlds []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, w := range worlds {
		w := w
		g.Go(func() error {
			_, err := c.Load(gctx, w)
			return err
		})
	}
	return g.Wait()
}

// Unload сохраняет изменения мира и выгружает его
func (c *RegionContainer) Unload(ctx context.Context, world string) error {
	m, ok := c.Get(world)
	if !ok {
		return nil
	}
	if err := m.SaveChanges(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.managers, strings.ToLower(world))
	c.mu.Unlock()

	logging.Info("📤 Мир %s выгружен", world)
	return nil
}

// SaveAll сохраняет все изменённые миры
func (c *RegionContainer) SaveAll(ctx context.Context) error {
	c.mu.RLock()
	managers := make([]*RegionManager, 0, len(c.managers))
	for _, m := range c.managers {
		managers = append(managers, m)
	}
	c.mu.RUnlock()

	var firstErr error
	for _, m := range managers {
		if err := m.SaveChanges(ctx); err != nil {
			logging.Error("❌ Ошибка сохранения мира %s: %v", m.World(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("save all: %w", err)
			}
		}
	}
	return firstErr
}
