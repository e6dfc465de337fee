package protection

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// RegionType - форма региона
type RegionType int

const (
	Cuboid RegionType = iota + 1
	Polygon
	Global
)

func (t RegionType) String() string {
	switch t {
	case Cuboid:
		return "cuboid"
	case Polygon:
		return "poly2d"
	case Global:
		return "global"
	default:
		return "unknown"
	}
}

// ParseRegionType разбирает имя формы из хранилища
func ParseRegionType(s string) (RegionType, bool) {
	switch strings.ToLower(s) {
	case "cuboid":
		return Cuboid, true
	case "poly2d", "polygon":
		return Polygon, true
	case "global":
		return Global, true
	}
	return 0, false
}

// GlobalRegionID - идентификатор глобального региона мира
const GlobalRegionID = "__global__"

var validRegionID = regexp.MustCompile(`^[A-Za-z0-9_,'\-+/]+$`)

// IsValidID проверяет идентификатор региона
func IsValidID(id string) bool {
	return validRegionID.MatchString(id)
}

func normalizeID(id string) string {
	return strings.ToLower(id)
}

// Region - защищённая область мира
type Region struct {
	id     string
	typ    RegionType
	min    BlockVector
	max    BlockVector
	points []BlockVector2D

	mu       sync.RWMutex
	priority int
	parent   *Region
	flags    map[Flag]any
	// значения флагов, которых нет в реестре при загрузке; сохраняются как есть
	unknownFlags map[string]any
	owners       *DefaultDomain
	members      *DefaultDomain
	dirty        bool
}

func newRegion(id string, typ RegionType) (*Region, error) {
	if !IsValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRegionID, id)
	}
	return &Region{
		id:      normalizeID(id),
		typ:     typ,
		flags:   make(map[Flag]any),
		owners:  NewDefaultDomain(),
		members: NewDefaultDomain(),
		dirty:   true,
	}, nil
}

// NewCuboidRegion создаёт кубоид по двум противоположным углам в любом порядке
func NewCuboidRegion(id string, a, b BlockVector) (*Region, error) {
	r, err := newRegion(id, Cuboid)
	if err != nil {
		return nil, err
	}
	r.min = NewBlockVector(a.Vec3().Min(b.Vec3()))
	r.max = NewBlockVector(a.Vec3().Max(b.Vec3()))
	return r, nil
}

// NewPolygonalRegion создаёт полигон по вершинам и границам высоты
func NewPolygonalRegion(id string, points []BlockVector2D, minY, maxY int) (*Region, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: полигону нужно минимум 3 вершины, получено %d", ErrInvalidShape, len(points))
	}
	r, err := newRegion(id, Polygon)
	if err != nil {
		return nil, err
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	r.points = append([]BlockVector2D(nil), points...)
	r.min = BlockVector{X: points[0].X, Y: minY, Z: points[0].Z}
	r.max = BlockVector{X: points[0].X, Y: maxY, Z: points[0].Z}
	for _, p := range points[1:] {
		r.min.X, r.min.Z = min(r.min.X, p.X), min(r.min.Z, p.Z)
		r.max.X, r.max.Z = max(r.max.X, p.X), max(r.max.Z, p.Z)
	}
	return r, nil
}

// NewGlobalRegion создаёт глобальный регион без геометрии
func NewGlobalRegion(id string) (*Region, error) {
	return newRegion(id, Global)
}

func (r *Region) ID() string                { return r.id }
func (r *Region) Type() RegionType          { return r.typ }
func (r *Region) MinimumPoint() BlockVector { return r.min }
func (r *Region) MaximumPoint() BlockVector { return r.max }

// Points возвращает вершины в плоскости XZ.
// Для кубоида - четыре угла, для глобального региона - пусто.
func (r *Region) Points() []BlockVector2D {
	switch r.typ {
	case Cuboid:
		return []BlockVector2D{
			{X: r.min.X, Z: r.min.Z},
			{X: r.min.X, Z: r.max.Z},
			{X: r.max.X, Z: r.max.Z},
			{X: r.max.X, Z: r.min.Z},
		}
	case Polygon:
		return append([]BlockVector2D(nil), r.points...)
	}
	return nil
}

// Priority возвращает приоритет; больший побеждает
func (r *Region) Priority() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.priority
}

func (r *Region) SetPriority(p int) {
	r.mu.Lock()
	r.priority = p
	r.dirty = true
	r.mu.Unlock()
}

// Parent возвращает родительский регион или nil
func (r *Region) Parent() *Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parent
}

// SetParent задаёт родителя; nil снимает наследование
func (r *Region) SetParent(p *Region) error {
	for cur := p; cur != nil; cur = cur.Parent() {
		if cur == r {
			return fmt.Errorf("%s -> %s: %w", r.id, p.id, ErrCircularParent)
		}
	}

	r.mu.Lock()
	r.parent = p
	r.dirty = true
	r.mu.Unlock()
	return nil
}

// Flag возвращает значение флага, заданное непосредственно в регионе, или nil
func (r *Region) Flag(f Flag) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags[f]
}

// SetFlag устанавливает значение флага; nil удаляет значение
func (r *Region) SetFlag(f Flag, v any) error {
	if v != nil && !f.Accepts(v) {
		return fmt.Errorf("%s: %w: %v (%T)", f.Name(), ErrInvalidValue, v, v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v == nil {
		delete(r.flags, f)
	} else {
		r.flags[f] = v
	}
	delete(r.unknownFlags, strings.ToLower(f.Name()))
	r.dirty = true
	return nil
}

// keepUnknownFlag запоминает сырое значение флага, отсутствующего в реестре
func (r *Region) keepUnknownFlag(name string, raw any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unknownFlags == nil {
		r.unknownFlags = make(map[string]any)
	}
	r.unknownFlags[strings.ToLower(name)] = raw
}

// unknownFlagValues возвращает копию сырых значений незарегистрированных флагов
func (r *Region) unknownFlagValues() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]any, len(r.unknownFlags))
	for name, raw := range r.unknownFlags {
		out[name] = raw
	}
	return out
}

// Flags возвращает копию всех значений флагов региона
func (r *Region) Flags() map[Flag]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Flag]any, len(r.flags))
	for f, v := range r.flags {
		out[f] = v
	}
	return out
}

func (r *Region) Owners() *DefaultDomain  { return r.owners }
func (r *Region) Members() *DefaultDomain { return r.members }

// IsDirty сообщает о несохранённых изменениях
func (r *Region) IsDirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

func (r *Region) setDirty(d bool) {
	r.mu.Lock()
	r.dirty = d
	r.mu.Unlock()
}

// IsOwner проверяет владение с учётом родителей
func (r *Region) IsOwner(s Subject) bool {
	for cur := r; cur != nil; cur = cur.Parent() {
		if cur.owners.Contains(s) {
			return true
		}
	}
	return false
}

// IsMember проверяет участие (владельцы тоже участники) с учётом родителей
func (r *Region) IsMember(s Subject) bool {
	for cur := r; cur != nil; cur = cur.Parent() {
		if cur.owners.Contains(s) || cur.members.Contains(s) {
			return true
		}
	}
	return false
}

// Association возвращает отношение субъекта к региону
func (r *Region) Association(s Subject) Association {
	switch {
	case s == nil:
		return NonMember
	case r.IsOwner(s):
		return Owner
	case r.IsMember(s):
		return Member
	default:
		return NonMember
	}
}

// Contains проверяет, находится ли блок внутри региона
func (r *Region) Contains(pt BlockVector) bool {
	switch r.typ {
	case Cuboid:
		return pt.X >= r.min.X && pt.X <= r.max.X &&
			pt.Y >= r.min.Y && pt.Y <= r.max.Y &&
			pt.Z >= r.min.Z && pt.Z <= r.max.Z
	case Polygon:
		if pt.Y < r.min.Y || pt.Y > r.max.Y {
			return false
		}
		if pt.X < r.min.X || pt.X > r.max.X || pt.Z < r.min.Z || pt.Z > r.max.Z {
			return false
		}
		return polygonContains(r.points, pt.X, pt.Z)
	}
	return false
}

// Intersects проверяет пересечение с другим регионом
func (r *Region) Intersects(other *Region) bool {
	if r.typ == Global || other.typ == Global {
		return false
	}
	if r.max.X < other.min.X || r.min.X > other.max.X ||
		r.max.Y < other.min.Y || r.min.Y > other.max.Y ||
		r.max.Z < other.min.Z || r.min.Z > other.max.Z {
		return false
	}
	if r.typ == Cuboid && other.typ == Cuboid {
		return true
	}

	// Хотя бы одна сторона - полигон: проверяем вершины и рёбра в плоскости XZ
	a, b := r.Points(), other.Points()
	for _, p := range a {
		if other.contains2D(p) {
			return true
		}
	}
	for _, p := range b {
		if r.contains2D(p) {
			return true
		}
	}
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if segmentsIntersect(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

func (r *Region) contains2D(p BlockVector2D) bool {
	switch r.typ {
	case Cuboid:
		return p.X >= r.min.X && p.X <= r.max.X && p.Z >= r.min.Z && p.Z <= r.max.Z
	case Polygon:
		return polygonContains(r.points, p.X, p.Z)
	}
	return false
}

// polygonContains - ray casting; точки на рёбрах и вершинах считаются внутри
func polygonContains(points []BlockVector2D, x, z int) bool {
	n := len(points)
	if n < 3 {
		return false
	}

	inside := false
	prev := points[n-1]
	for _, cur := range points {
		if onSegment(prev, cur, x, z) {
			return true
		}
		if (cur.Z > z) != (prev.Z > z) {
			crossX := float64(prev.X) + float64(z-prev.Z)*float64(cur.X-prev.X)/float64(cur.Z-prev.Z)
			if float64(x) < crossX {
				inside = !inside
			}
		}
		prev = cur
	}
	return inside
}

func onSegment(a, b BlockVector2D, x, z int) bool {
	cross := (b.X-a.X)*(z-a.Z) - (b.Z-a.Z)*(x-a.X)
	if cross != 0 {
		return false
	}
	return x >= min(a.X, b.X) && x <= max(a.X, b.X) && z >= min(a.Z, b.Z) && z <= max(a.Z, b.Z)
}

func orientation(a, b, c BlockVector2D) int {
	v := (b.X-a.X)*(c.Z-a.Z) - (b.Z-a.Z)*(c.X-a.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func segmentsIntersect(p1, p2, q1, q2 BlockVector2D) bool {
	o1, o2 := orientation(p1, p2, q1), orientation(p1, p2, q2)
	o3, o4 := orientation(q1, q2, p1), orientation(q1, q2, p2)
	if o1 != o2 && o3 != o4 {
		return true
	}
	return (o1 == 0 && onSegment(p1, p2, q1.X, q1.Z)) ||
		(o2 == 0 && onSegment(p1, p2, q2.X, q2.Z)) ||
		(o3 == 0 && onSegment(q1, q2, p1.X, p1.Z)) ||
		(o4 == 0 && onSegment(q1, q2, p2.X, p2.Z))
}
