// Package legacy - редакция движка защиты 6.x.
//
// API редакции: плагин отдаёт менеджер регионов по имени мира, набор флагов
// статический и не расширяется во время работы, координаты задаются
// вещественным Vector, удаление региона всегда удаляет его потомков.
package legacy

import (
	"context"
	"math"

	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
)

// Vector - вещественная точка API 6.x
type Vector struct {
	X, Y, Z float64
}

// NewVector создаёт вектор
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// ToBlockVector округляет координаты вниз до блока
func (v Vector) ToBlockVector() protection.BlockVector {
	return protection.BlockVector{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

// BlockVector2D - вершина полигона в API 6.x
type BlockVector2D struct {
	X, Z int
}

// defaultFlags - неизменяемый набор флагов редакции
var defaultFlags = func() *protection.FlagRegistry {
	r := protection.NewDefaultFlagRegistry()
	r.Lock()
	return r
}()

// DefaultFlags возвращает все флаги редакции
func DefaultFlags() []protection.Flag {
	return defaultFlags.All()
}

// FuzzyMatchFlag ищет флаг по имени без учёта регистра, nil если не найден
func FuzzyMatchFlag(name string) protection.Flag {
	return defaultFlags.Get(name)
}

// Plugin - точка входа редакции 6.x
type Plugin struct {
	version   string
	container *protection.RegionContainer
}

// NewPlugin создаёт плагин; driver может быть nil
func NewPlugin(version string, driver store.Driver) *Plugin {
	return &Plugin{
		version:   version,
		container: protection.NewRegionContainer(defaultFlags, driver),
	}
}

// Version возвращает версию плагина
func (p *Plugin) Version() string { return p.version }

// LoadWorlds загружает регионы миров
func (p *Plugin) LoadWorlds(ctx context.Context, worlds ...string) error {
	return p.container.LoadAll(ctx, worlds)
}

// SaveAll сохраняет изменённые миры
func (p *Plugin) SaveAll(ctx context.Context) error {
	return p.container.SaveAll(ctx)
}

// AddListener подписывает слушателя на изменения регионов
func (p *Plugin) AddListener(l protection.ChangeListener) {
	p.container.AddListener(l)
}

// RegionManager возвращает менеджер мира или nil, если мир не загружен
func (p *Plugin) RegionManager(world string) *RegionManager {
	m, ok := p.container.Get(world)
	if !ok {
		return nil
	}
	return &RegionManager{m: m}
}

// WrapPlayer превращает игрока хоста в субъект движка
func (p *Plugin) WrapPlayer(player *host.Player) *protection.LocalPlayer {
	return &protection.LocalPlayer{
		ID:     player.ID,
		Nick:   player.Name,
		Groups: append([]string(nil), player.Groups...),
	}
}

// RegionManager - менеджер регионов мира в API 6.x
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
func (rm *RegionManager) GetApplicableRegions(pt Vector) *protection.ApplicableRegionSet {
	return rm.m.ApplicableRegions(pt.ToBlockVector())
}

// GetApplicableRegionsFor возвращает регионы, пересекающиеся с данным
func (rm *RegionManager) GetApplicableRegionsFor(r *protection.Region) *protection.ApplicableRegionSet {
	return rm.m.ApplicableRegionsFor(r)
}

// AddRegion добавляет или заменяет регион
func (rm *RegionManager) AddRegion(r *protection.Region) {
	rm.m.AddRegion(r)
}

// RemoveRegion удаляет регион вместе с потомками и возвращает удалённые регионы
func (rm *RegionManager) RemoveRegion(id string) []*protection.Region {
	return rm.m.RemoveRegion(id, protection.RemoveChildren)
}

// Save записывает регионы мира
func (rm *RegionManager) Save(ctx context.Context) error {
	return rm.m.Save(ctx)
}

// NewCuboid создаёт кубоид по двум углам
func NewCuboid(id string, a, b Vector) (*protection.Region, error) {
	return protection.NewCuboidRegion(id, a.ToBlockVector(), b.ToBlockVector())
}

// NewPolygon создаёт полигональный регион
func NewPolygon(id string, points []BlockVector2D, minY, maxY int) (*protection.Region, error) {
	pts := make([]protection.BlockVector2D, len(points))
	for i, p := range points {
		pts[i] = protection.BlockVector2D{X: p.X, Z: p.Z}
	}
	return protection.NewPolygonalRegion(id, pts, minY, maxY)
}
