package protection

import (
	"fmt"
	"sort"

	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/google/uuid"
)

// EncodeRegion преобразует регион в запись хранилища
func EncodeRegion(r *Region) (store.RegionRecord, error) {
	rec := store.RegionRecord{
		ID:       r.ID(),
		Type:     r.Type().String(),
		Priority: r.Priority(),
		Flags:    make(map[string]any),
		Owners:   encodeDomain(r.Owners()),
		Members:  encodeDomain(r.Members()),
	}
	if p := r.Parent(); p != nil {
		rec.Parent = p.ID()
	}

	switch r.Type() {
	case Cuboid:
		rec.Min = &store.Point3{X: r.min.X, Y: r.min.Y, Z: r.min.Z}
		rec.Max = &store.Point3{X: r.max.X, Y: r.max.Y, Z: r.max.Z}
	case Polygon:
		rec.MinY, rec.MaxY = r.min.Y, r.max.Y
		for _, p := range r.points {
			rec.Points = append(rec.Points, store.Point2{X: p.X, Z: p.Z})
		}
	}

	for name, raw := range r.unknownFlagValues() {
		rec.Flags[name] = raw
	}
	for f, v := range r.Flags() {
		raw, err := f.Marshal(v)
		if err != nil {
			return store.RegionRecord{}, fmt.Errorf("регион %s: %w", r.ID(), err)
		}
		rec.Flags[f.Name()] = raw
	}
	return rec, nil
}

func encodeDomain(d *DefaultDomain) store.DomainRecord {
	var rec store.DomainRecord
	for _, id := range d.Players() {
		rec.Players = append(rec.Players, id.String())
	}
	rec.Groups = d.Groups()
	return rec
}

// DecodeRegions восстанавливает регионы из записей и связывает родителей.
// Значения незарегистрированных флагов хранятся в регионе как есть и записываются
// обратно при сохранении; некорректные значения известных флагов пропускаются с предупреждением;
// неразрешимые записи возвращаются как ошибка после загрузки остальных.
func DecodeRegions(world string, records []store.RegionRecord, registry *FlagRegistry) ([]*Region, error) {
	byID := make(map[string]*Region, len(records))
	parents := make(map[string]string)
	var firstErr error

	for _, rec := range records {
		r, err := decodeRegion(world, rec, registry)
		if err != nil {
			logging.Warn("⚠️ Пропущен регион %s/%s: %v", world, rec.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		byID[r.ID()] = r
		if rec.Parent != "" {
			parents[r.ID()] = rec.Parent
		}
	}

	// Родители связываются в порядке id, чтобы результат не зависел от порядка записей
	ids := make([]string, 0, len(parents))
	for id := range parents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		parent, ok := byID[normalizeID(parents[id])]
		if !ok {
			logging.Warn("⚠️ Регион %s/%s: родитель %s не найден", world, id, parents[id])
			continue
		}
		if err := byID[id].SetParent(parent); err != nil {
			logging.Warn("⚠️ Регион %s/%s: %v", world, id, err)
		}
	}

	out := make([]*Region, 0, len(byID))
	for _, r := range byID {
		r.setDirty(false)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, firstErr
}

func decodeRegion(world string, rec store.RegionRecord, registry *FlagRegistry) (*Region, error) {
	typ, ok := ParseRegionType(rec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: неизвестный тип %q", ErrInvalidShape, rec.Type)
	}

	var (
		r   *Region
		err error
	)
	switch typ {
	case Cuboid:
		if rec.Min == nil || rec.Max == nil {
			return nil, fmt.Errorf("%w: у кубоида нет углов", ErrInvalidShape)
		}
		r, err = NewCuboidRegion(rec.ID,
			BlockVector{X: rec.Min.X, Y: rec.Min.Y, Z: rec.Min.Z},
			BlockVector{X: rec.Max.X, Y: rec.Max.Y, Z: rec.Max.Z})
	case Polygon:
		points := make([]BlockVector2D, len(rec.Points))
		for i, p := range rec.Points {
			points[i] = BlockVector2D{X: p.X, Z: p.Z}
		}
		r, err = NewPolygonalRegion(rec.ID, points, rec.MinY, rec.MaxY)
	case Global:
		r, err = NewGlobalRegion(rec.ID)
	}
	if err != nil {
		return nil, err
	}

	r.SetPriority(rec.Priority)
	decodeDomain(world, r.ID(), rec.Owners, r.Owners())
	decodeDomain(world, r.ID(), rec.Members, r.Members())

	names := make([]string, 0, len(rec.Flags))
	for name := range rec.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := registry.Get(name)
		if f == nil {
			logging.Debug("🏳️ Регион %s/%s: флаг %s не зарегистрирован, значение сохранено без изменений", world, r.ID(), name)
			r.keepUnknownFlag(name, rec.Flags[name])
			continue
		}
		v, err := f.Unmarshal(rec.Flags[name])
		if err != nil {
			logging.Warn("⚠️ Регион %s/%s: %v", world, r.ID(), err)
			continue
		}
		if err := r.SetFlag(f, v); err != nil {
			logging.Warn("⚠️ Регион %s/%s: %v", world, r.ID(), err)
		}
	}
	return r, nil
}

func decodeDomain(world, regionID string, rec store.DomainRecord, d *DefaultDomain) {
	for _, p := range rec.Players {
		id, err := uuid.Parse(p)
		if err != nil {
			logging.Warn("⚠️ Регион %s/%s: некорректный uuid игрока %q", world, regionID, p)
			continue
		}
		d.AddPlayer(id)
	}
	for _, g := range rec.Groups {
		d.AddGroup(g)
	}
}
