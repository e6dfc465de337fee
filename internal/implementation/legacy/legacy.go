// Package legacy - реализация фасада для движка 6.x.
package legacy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation/wrapped"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	engine "github.com/Andre601/WorldGuardWrapper/internal/protection/legacy"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
)

// Implementation - фасад над engine.Plugin
type Implementation struct {
	plugin *engine.Plugin
	worlds implementation.WorldResolver
}

var _ implementation.Implementation = (*Implementation)(nil)

// New создаёт фасад; worlds разрешает миры в значениях флагов-позиций
func New(plugin *engine.Plugin, worlds implementation.WorldResolver) *Implementation {
	return &Implementation{plugin: plugin, worlds: worlds}
}

func (i *Implementation) APIVersion() int       { return implementation.LegacyAPIVersion }
func (i *Implementation) EngineVersion() string { return i.plugin.Version() }

func (i *Implementation) subject(player *host.Player) protection.Subject {
	if player == nil {
		return nil
	}
	return i.plugin.WrapPlayer(player)
}

func (i *Implementation) GetFlag(name string, valueType reflect.Type) (flag.WrappedFlag, bool) {
	return wrapped.WrapAs(engine.FuzzyMatchFlag(name), valueType, i.worlds)
}

func (i *Implementation) QueryFlag(player *host.Player, loc host.Location, f flag.WrappedFlag) (any, bool) {
	wf, ok := wrapped.Unwrap(f)
	if !ok {
		return nil, false
	}
	rm := i.plugin.RegionManager(loc.World.Name)
	if rm == nil {
		return nil, false
	}

	value := rm.GetApplicableRegions(toVector(loc)).QueryValue(i.subject(player), wf.Native())
	return wf.FromNativeValue(value)
}

// RegisterFlag недоступен: набор флагов 6.x фиксирован
func (i *Implementation) RegisterFlag(name string, _ reflect.Type, _ any) (flag.WrappedFlag, error) {
	return nil, fmt.Errorf("register %q: %w: custom flags require engine 7.x, bound %s",
		name, implementation.ErrUnsupported, i.plugin.Version())
}

func (i *Implementation) HasRegionManager(world host.World) bool {
	return i.plugin.RegionManager(world.Name) != nil
}

func (i *Implementation) GetRegion(world host.World, id string) (region.WrappedRegion, bool) {
	rm := i.plugin.RegionManager(world.Name)
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
	rm := i.plugin.RegionManager(world.Name)
	if rm == nil {
		return out
	}
	for id, r := range rm.GetRegions() {
		out[id] = wrapped.NewRegion(world, r, i.worlds)
	}
	return out
}

func (i *Implementation) RegionsAt(loc host.Location) region.Set {
	rm := i.plugin.RegionManager(loc.World.Name)
	if rm == nil {
		return region.Set{}
	}
	return wrapped.WrapAll(loc.World, rm.GetApplicableRegions(toVector(loc)).Regions(), i.worlds)
}

func (i *Implementation) RegionsIn(minimum, maximum host.Location) region.Set {
	rm := i.plugin.RegionManager(minimum.World.Name)
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
	return engine.NewCuboid("temp", toVector(minimum), toVector(maximum))
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

	rm := i.plugin.RegionManager(world.Name)
	if rm == nil {
		return nil, false
	}

	var (
		r   *protection.Region
		err error
	)
	if len(points) == 2 {
		r, err = engine.NewCuboid(id, toVector(points[0]), toVector(points[1]))
	} else {
		r, err = engine.NewPolygon(id, toBlockVector2DList(points), minY, maxY)
	}
	if err != nil {
		logging.Debug("⚠️ Регион %s не создан: %v", id, err)
		return nil, false
	}

	rm.AddRegion(r)
	return wrapped.NewRegion(world, r, i.worlds), true
}

func (i *Implementation) RemoveRegion(world host.World, id string) (region.Set, bool) {
	rm := i.plugin.RegionManager(world.Name)
	if rm == nil {
		return nil, false
	}
	return wrapped.WrapAll(world, rm.RemoveRegion(id), i.worlds), true
}
