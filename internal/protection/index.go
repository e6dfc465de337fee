package protection

import (
	"sort"
	"sync"
)

// chunkShift - размер ячейки индекса 16x16 блоков (один чанк)
const chunkShift = 4

// maxIndexedCells - регионы, покрывающие больше ячеек, проверяются всегда
const maxIndexedCells = 4096

// cellKey - ключ ячейки сетки в плоскости XZ
type cellKey struct {
	x, z int
}

func cellOf(x, z int) cellKey {
	return cellKey{x: x >> chunkShift, z: z >> chunkShift}
}

// cellCount возвращает число ячеек прямоугольника lo..hi, если оно не больше limit.
// Каждая ось сравнивается с limit до умножения, чтобы произведение не переполнилось.
func cellCount(lo, hi cellKey, limit int) (int, bool) {
	dx, dz := hi.x-lo.x+1, hi.z-lo.z+1
	if dx > limit || dz > limit || dx*dz > limit {
		return 0, false
	}
	return dx * dz, true
}

// indexedRegion хранит ячейки, занятые регионом
type indexedRegion struct {
	region *Region
	cells  []cellKey
	large  bool
}

// spatialIndex - сетка по чанкам для быстрого поиска регионов по точке
type spatialIndex struct {
	mu      sync.RWMutex
	cells   map[cellKey]map[string]*Region
	large   map[string]*Region
	entries map[string]*indexedRegion
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		cells:   make(map[cellKey]map[string]*Region),
		large:   make(map[string]*Region),
		entries: make(map[string]*indexedRegion),
	}
}

// insert добавляет регион (повторная вставка заменяет старую запись)
func (si *spatialIndex) insert(r *Region) {
	if r.Type() == Global {
		return
	}

	si.mu.Lock()
	defer si.mu.Unlock()

	si.removeLocked(r.ID())

	lo, hi := cellOf(r.min.X, r.min.Z), cellOf(r.max.X, r.max.Z)
	count, small := cellCount(lo, hi, maxIndexedCells)

	entry := &indexedRegion{region: r}
	if !small {
		entry.large = true
		si.large[r.ID()] = r
		si.entries[r.ID()] = entry
		return
	}

	entry.cells = make([]cellKey, 0, count)
	for x := lo.x; x <= hi.x; x++ {
		for z := lo.z; z <= hi.z; z++ {
			key := cellKey{x: x, z: z}
			cell, ok := si.cells[key]
			if !ok {
				cell = make(map[string]*Region)
				si.cells[key] = cell
			}
			cell[r.ID()] = r
			entry.cells = append(entry.cells, key)
		}
	}
	si.entries[r.ID()] = entry
}

// remove убирает регион из индекса
func (si *spatialIndex) remove(id string) {
	si.mu.Lock()
	si.removeLocked(id)
	si.mu.Unlock()
}

func (si *spatialIndex) removeLocked(id string) {
	entry, ok := si.entries[id]
	if !ok {
		return
	}
	delete(si.entries, id)

	if entry.large {
		delete(si.large, id)
		return
	}
	for _, key := range entry.cells {
		if cell, exists := si.cells[key]; exists {
			delete(cell, id)
			if len(cell) == 0 {
				delete(si.cells, key)
			}
		}
	}
}

// queryPoint возвращает регионы, содержащие точку, отсортированные по id
func (si *spatialIndex) queryPoint(pt BlockVector) []*Region {
	si.mu.RLock()
	defer si.mu.RUnlock()

	out := make([]*Region, 0)
	for _, r := range si.cells[cellOf(pt.X, pt.Z)] {
		if r.Contains(pt) {
			out = append(out, r)
		}
	}
	for _, r := range si.large {
		if r.Contains(pt) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// queryRegion возвращает регионы, пересекающиеся с заданным
func (si *spatialIndex) queryRegion(target *Region) []*Region {
	si.mu.RLock()
	defer si.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]*Region, 0)
	check := func(r *Region) {
		if _, dup := seen[r.ID()]; dup {
			return
		}
		seen[r.ID()] = struct{}{}
		if r.Intersects(target) {
			out = append(out, r)
		}
	}

	lo, hi := cellOf(target.min.X, target.min.Z), cellOf(target.max.X, target.max.Z)
	if _, small := cellCount(lo, hi, len(si.cells)); !small {
		// Запрос шире занятой части сетки: дешевле перебрать все записи
		for _, entry := range si.entries {
			check(entry.region)
		}
	} else {
		for x := lo.x; x <= hi.x; x++ {
			for z := lo.z; z <= hi.z; z++ {
				for _, r := range si.cells[cellKey{x: x, z: z}] {
					check(r)
				}
			}
		}
		for _, r := range si.large {
			check(r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (si *spatialIndex) size() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.entries)
}
