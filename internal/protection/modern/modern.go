// Package modern - редакция движка защиты 7.x.
//
// Доступ к регионам идёт через WorldGuard -> Platform -> RegionContainer,
// реестр флагов открыт для регистрации до вызова Lock, координаты целочисленные
// (BlockVector3), стратегия удаления потомков задаётся явно.
package modern

import (
	"context"

	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
)

// BlockVector3 - целочисленная точка API 7.x
type BlockVector3 struct {
	X, Y, Z int
}

// At создаёт BlockVector3
func At(x, y, z int) BlockVector3 {
	return BlockVector3{X: x, Y: y, Z: z}
}

func (v BlockVector3) toEngine() protection.BlockVector {
	return protection.BlockVector{X: v.X, Y: v.Y, Z: v.Z}
}

// BlockVector2 - вершина полигона в API 7.x
type BlockVector2 struct {
	X, Z int
}

// WorldGuard - точка входа редакции 7.x
type WorldGuard struct {
	version  string
	registry *protection.FlagRegistry
	platform *Platform
}

// New создаёт экземпляр движка; driver может быть nil
func New(version string, driver store.Driver) *WorldGuard {
	registry := protection.NewDefaultFlagRegistry()
	return &WorldGuard{
		version:  version,
		registry: registry,
		platform: &Platform{
			container: &RegionContainer{inner: protection.NewRegionContainer(registry, driver)},
		},
	}
}

// Version возвращает версию движка
func (wg *WorldGuard) Version() string { return wg.version }

// FlagRegistry возвращает изменяемый реестр флагов
func (wg *WorldGuard) FlagRegistry() *protection.FlagRegistry { return wg.registry }

// Platform возвращает платформенную часть движка
func (wg *WorldGuard) Platform() *Platform { return wg.platform }

// WrapPlayer превращает игрока хоста в субъект движка
func (wg *WorldGuard) WrapPlayer(player *host.Player) *protection.LocalPlayer {
	return &protection.LocalPlayer{
		ID:     player.ID,
		Nick:   player.Name,
		Groups: append([]string(nil), player.Groups...),
	}
}

// Platform даёт доступ к контейнеру регионов
type Platform struct {
	container *RegionContainer
}

// RegionContainer возвращает контейнер регионов всех миров
func (p *Platform) RegionContainer() *RegionContainer { return p.container }

// RegionContainer - менеджеры регионов загруженных миров
type RegionContainer struct {
	inner *protection.RegionContainer
}

// Get возвращает менеджер мира или nil
func (c *RegionContainer) Get(world host.World) *RegionManager {
	m, ok := c.inner.Get(world.Name)
	if !ok {
		return nil
	}
	return &RegionManager{m: m}
}

// Load загружает регионы миров
func (c *RegionContainer) Load(ctx context.Context, worlds ...host.World) error {
	names := make([]string, len(worlds))
	for i, w := range worlds {
		names[i] = w.Name
	}
	return c.inner.LoadAll(ctx, names)
}

// SaveAll сохраняет изменённые миры
func (c *RegionContainer) SaveAll(ctx context.Context) error {
	return c.inner.SaveAll(ctx)
}

// AddListener подписывает слушателя на изменения регионов
func (c *RegionContainer) AddListener(l protection.ChangeListener) {
	c.inner.AddListener(l)
}

// CreateQuery создаёт запрос по позициям, не зависящий от конкретного мира
func (c *RegionContainer) CreateQuery() *RegionQuery {
	return &RegionQuery{container: c}
}

// RegionQuery вычисляет флаги по позиции
type RegionQuery struct {
	container *RegionContainer
}

// GetApplicableRegions возвращает регионы в позиции; пустое множество, если мир не загружен
func (q *RegionQuery) GetApplicableRegions(loc host.Location) *protection.ApplicableRegionSet {
	rm := q.container.Get(loc.World)
	if rm == nil {
		return protection.NewApplicableRegionSet(nil, nil)
	}
	b := loc.Block()
	return rm.GetApplicableRegions(At(b.X, b.Y, b.Z))
}

// QueryValue вычисляет значение флага в позиции; subject может быть nil
func (q *RegionQuery) QueryValue(loc host.Location, subject protection.Subject, f protection.Flag) any {
	return q.GetApplicableRegions(loc).QueryValue(subject, f)
}

// TestState проверяет, что итоговое состояние флагов - ALLOW
func (q *RegionQuery) TestState(loc host.Location, subject protection.Subject, flags ...*protection.StateFlag) bool {
	return q.GetApplicableRegions(loc).TestState(subject, flags...)
}

// RegionManager - менеджер регионов мира в API 7.x
type RegionManager struct {
	m *protection.RegionManager
}

// GetRegion возвращает регион или nil
func (rm *RegionManager) GetRegion(id string) *protection.Region {
	r, ok := rm.m.GetRegion(id)
	if !ok {
		return nil
	}
	return r
}

// GetRegions возвращает все регионы мира по id
func (rm *RegionManager) GetRegions() map[string]*protection.Region {
	return rm.m.Regions()
}

// HasRegion проверяет наличие региона
func (rm *RegionManager) HasRegion(id string) bool {
	return rm.m.HasRegion(id)
}

// GetApplicableRegions возвращает регионы, содержащие точку
func (rm *RegionManager) GetApplicableRegions(pt BlockVector3) *protection.ApplicableRegionSet {
	return rm.m.ApplicableRegions(pt.toEngine())
}

// GetApplicableRegionsFor возвращает регионы, пересекающиеся с данным
func (rm *RegionManager) GetApplicableRegionsFor(r *protection.Region) *protection.ApplicableRegionSet {
	return rm.m.ApplicableRegionsFor(r)
}

// AddRegion добавляет или заменяет регион
func (rm *RegionManager) AddRegion(r *protection.Region) {
	rm.m.AddRegion(r)
}

// RemoveRegion удаляет регион по стратегии и возвращает все удалённые регионы
func (rm *RegionManager) RemoveRegion(id string, strategy protection.RemovalStrategy) []*protection.Region {
	return rm.m.RemoveRegion(id, strategy)
}

// Save записывает регионы мира
func (rm *RegionManager) Save(ctx context.Context) error {
	return rm.m.Save(ctx)
}

// NewCuboid создаёт кубоид по двум углам
func NewCuboid(id string, a, b BlockVector3) (*protection.Region, error) {
	return protection.NewCuboidRegion(id, a.toEngine(), b.toEngine())
}

// NewPolygon создаёт полигональный регион
func NewPolygon(id string, points []BlockVector2, minY, maxY int) (*protection.Region, error) {
	pts := make([]protection.BlockVector2D, len(points))
	for i, p := range points {
		pts[i] = protection.BlockVector2D{X: p.X, Z: p.Z}
	}
	return protection.NewPolygonalRegion(id, pts, minY, maxY)
}
