package wrapped

import (
	"fmt"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
)

// Region - ручка региона движка. Своего состояния не имеет, все вызовы делегируются.
type Region struct {
	world  host.World
	native *protection.Region
	worlds implementation.WorldResolver
}

// NewRegion оборачивает регион мира world. Известный хосту мир заменяется
// его каноническим значением (имена миров сравниваются без учёта регистра).
func NewRegion(world host.World, native *protection.Region, worlds implementation.WorldResolver) *Region {
	if worlds != nil {
		if canonical, ok := worlds.World(world.Name); ok {
			world = canonical
		}
	}
	return &Region{world: world, native: native, worlds: worlds}
}

// WrapAll оборачивает регионы одного мира во множество
func WrapAll(world host.World, natives []*protection.Region, worlds implementation.WorldResolver) region.Set {
	set := make(region.Set, len(natives))
	for _, r := range natives {
		set.Add(NewRegion(world, r, worlds))
	}
	return set
}

// Native возвращает регион движка
func (r *Region) Native() *protection.Region { return r.native }

func (r *Region) ID() string        { return r.native.ID() }
func (r *Region) World() host.World { return r.world }

func (r *Region) Key() region.Key {
	return region.Key{World: strings.ToLower(r.world.Name), ID: r.native.ID()}
}

func (r *Region) String() string {
	return r.world.Name + "/" + r.native.ID()
}

func (r *Region) Shape() region.Shape {
	switch r.native.Type() {
	case protection.Cuboid:
		return region.Cuboid
	case protection.Polygon:
		return region.Polygon
	}
	return region.Global
}

func (r *Region) Selection() region.Selection {
	sel := region.Selection{Shape: r.Shape()}
	minPt, maxPt := r.native.MinimumPoint(), r.native.MaximumPoint()

	switch r.native.Type() {
	case protection.Cuboid:
		sel.Points = []host.Location{r.location(minPt), r.location(maxPt)}
		sel.MinY, sel.MaxY = minPt.Y, maxPt.Y
	case protection.Polygon:
		for _, p := range r.native.Points() {
			sel.Points = append(sel.Points, r.location(protection.BlockVector{X: p.X, Y: minPt.Y, Z: p.Z}))
		}
		sel.MinY, sel.MaxY = minPt.Y, maxPt.Y
	}
	return sel
}

func (r *Region) location(b protection.BlockVector) host.Location {
	return host.NewLocation(r.world, float64(b.X), float64(b.Y), float64(b.Z))
}

func (r *Region) Priority() int     { return r.native.Priority() }
func (r *Region) SetPriority(p int) { r.native.SetPriority(p) }

func (r *Region) Parent() (region.WrappedRegion, bool) {
	p := r.native.Parent()
	if p == nil {
		return nil, false
	}
	return NewRegion(r.world, p, r.worlds), true
}

func (r *Region) SetParent(parent region.WrappedRegion) error {
	if parent == nil {
		return r.native.SetParent(nil)
	}
	p, ok := parent.(*Region)
	if !ok || !strings.EqualFold(p.world.Name, r.world.Name) {
		return fmt.Errorf("%s -> %v: %w", r, parent.Key(), region.ErrForeignRegion)
	}
	return r.native.SetParent(p.native)
}

// Flags возвращает значения флагов по имени; непредставимые значения пропускаются
func (r *Region) Flags() map[string]any {
	out := make(map[string]any)
	for native, v := range r.native.Flags() {
		if value, ok := Wrap(native, r.worlds).FromNativeValue(v); ok {
			out[native.Name()] = value
		}
	}
	return out
}

func (r *Region) Flag(f flag.WrappedFlag) (any, bool) {
	wf, ok := Unwrap(f)
	if !ok {
		return nil, false
	}
	return wf.FromNativeValue(r.native.Flag(wf.Native()))
}

func (r *Region) SetFlag(f flag.WrappedFlag, value any) error {
	wf, ok := Unwrap(f)
	if !ok {
		return fmt.Errorf("%s: %w: ручка флага %T", r, flag.ErrValueType, f)
	}
	if value == nil {
		return r.native.SetFlag(wf.Native(), nil)
	}
	native, err := wf.ToNativeValue(value)
	if err != nil {
		return err
	}
	return r.native.SetFlag(wf.Native(), native)
}

func (r *Region) UnsetFlag(f flag.WrappedFlag) {
	if wf, ok := Unwrap(f); ok {
		_ = r.native.SetFlag(wf.Native(), nil)
	}
}

func (r *Region) Owners() region.Domain  { return &Domain{native: r.native.Owners()} }
func (r *Region) Members() region.Domain { return &Domain{native: r.native.Members()} }

func (r *Region) Contains(loc host.Location) bool {
	if !strings.EqualFold(loc.World.Name, r.world.Name) {
		return false
	}
	return r.native.Contains(protection.NewBlockVector(loc.Block()))
}
