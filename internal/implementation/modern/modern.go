// Package modern - реализация фасада для движка 7.x.
package modern

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation/wrapped"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	engine "github.com/Andre601/WorldGuardWrapper/internal/protection/modern"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
)

// Implementation - фасад над engine.WorldGuard
type Implementation struct {
	wg       *engine.WorldGuard
	worlds   implementation.WorldResolver
	strategy protection.RemovalStrategy
}

var _ implementation.Implementation = (*Implementation)(nil)

// Option настраивает фасад
type Option func(*Implementation)

// WithRemovalStrategy задаёт судьбу потомков при удалении региона (по умолчанию удаляются)
func WithRemovalStrategy(s protection.RemovalStrategy) Option {
	return func(i *Implementation) { i.strategy = s }
}

// New создаёт фасад; worlds разрешает миры в значениях флагов-позиций
func New(wg *engine.WorldGuard, worlds implementation.WorldResolver, opts ...Option) *Implementation {
	i := &Implementation{wg: wg, worlds: worlds, strategy: protection.RemoveChildren}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Implementation) APIVersion() int       { return implementation.ModernAPIVersion }
func (i *Implementation) EngineVersion() string { return i.wg.Version() }

func (i *Implementation) container() *engine.RegionContainer {
	return i.wg.Platform().RegionContainer()
}

func (i *Implementation) manager(world host.World) *engine.RegionManager {
	return i.container().Get(world)
}

func (i *Implementation) subject(player *host.Player) protection.Subject {
	if player == nil {
		return nil
	}
	return i.wg.WrapPlayer(player)
}

func (i *Implementation) GetFlag(name string, valueType reflect.Type) (flag.WrappedFlag, bool) {
	return wrapped.WrapAs(i.wg.FlagRegistry().Get(name), valueType, i.worlds)
}

func (i *Implementation) QueryFlag(player *host.Player, loc host.Location, f flag.WrappedFlag) (any, bool) {
	wf, ok := wrapped.Unwrap(f)
	if !ok || i.manager(loc.World) == nil {
		return nil, false
	}

	value := i.container().CreateQuery().QueryValue(loc, i.subject(player), wf.Native())
	return wf.FromNativeValue(value)
}

func (i *Implementation) RegisterFlag(name string, valueType reflect.Type, def any) (flag.WrappedFlag, error) {
	native, err := wrapped.NewNativeFlag(name, valueType, def)
	if err != nil {
		return nil, err
	}

	if err := i.wg.FlagRegistry().Register(native); err != nil {
		if errors.Is(err, protection.ErrFlagConflict) || errors.Is(err, protection.ErrRegistryLocked) {
			return nil, fmt.Errorf("%w: %w", implementation.ErrFlagConflict, err)
		}
		return nil, err
	}

	logging.Debug("🏳️ Зарегистрирован флаг %s (%s)", name, valueType)
	return wrapped.Wrap(native, i.worlds), nil
}

func (i *Implementation) HasRegionManager(world host.World) bool {
	return i.manager(world) != nil
}

func (i *Implementation) GetRegion(world host.World, id string) (region.WrappedRegion, bool) {
	rm := i.manager(world)
	if rm == nil {
		return nil, false
	}
	r := rm.GetRegion(id)
	if r == nil {
		return nil, false
	}
	return wrapped.NewRegion(world, r, i.worlds), true
}

func (i *Implementation) GetRegions(world host.World) map[string]region.WrappedRegion {
	out := make(map[string]region.WrappedRegion)
	rm := i.manager(world)
	if rm == nil {
		return out
	}
	for id, r := range rm.GetRegions() {
		out[id] = wrapped.NewRegion(world, r, i.worlds)
	}
	return out
}

func (i *Implementation) RegionsAt(loc host.Location) region.Set {
	rm := i.manager(loc.World)
	if rm == nil {
		return region.Set{}
	}
	return wrapped.WrapAll(loc.World, rm.GetApplicableRegions(toBlockVector3(loc)).Regions(), i.worlds)
}

func (i *Implementation) RegionsIn(minimum, maximum host.Location) region.Set {
	rm := i.manager(minimum.World)
	if rm == nil {
		return region.Set{}
	}
	box, err := transientBox(minimum, maximum)
	if err != nil {
		return region.Set{}
	}
	return wrapped.WrapAll(minimum.World, rm.GetApplicableRegionsFor(box).Regions(), i.worlds)
}

// transientBox строит кубоид "temp" только для запроса пересечений; в менеджер он не попадает
func transientBox(minimum, maximum host.Location) (*protection.Region, error) {
	return engine.NewCuboid("temp", toBlockVector3(minimum), toBlockVector3(maximum))
}

func (i *Implementation) AddRegion(id string, points []host.Location, minY, maxY int) (region.WrappedRegion, bool) {
	if len(points) == 0 {
		return nil, false
	}
	world := points[0].World
	for _, p := range points[1:] {
		if !strings.EqualFold(p.World.Name, world.Name) {
			return nil, false
		}
	}

	rm := i.manager(world)
	if rm == nil {
		return nil, false
	}

	var (
		r   *protection.Region
		err error
	)
	if len(points) == 2 {
		r, err = engine.NewCuboid(id, toBlockVector3(points[0]), toBlockVector3(points[1]))
	} else {
		r, err = engine.NewPolygon(id, toBlockVector2List(points), minY, maxY)
	}
	if err != nil {
		logging.Debug("⚠️ Регион %s не создан: %v", id, err)
		return nil, false
	}

	rm.AddRegion(r)
	return wrapped.NewRegion(world, r, i.worlds), true
}

func (i *Implementation) RemoveRegion(world host.World, id string) (region.Set, bool) {
	rm := i.manager(world)
	if rm == nil {
		return nil, false
	}
	return wrapped.WrapAll(world, rm.RemoveRegion(id, i.strategy), i.worlds), true
}
