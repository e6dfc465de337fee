package protection

import "sort"

// ApplicableRegionSet - регионы, применимые к точке или области,
// упорядоченные по убыванию приоритета, затем по id.
type ApplicableRegionSet struct {
	regions []*Region
	global  *Region
}

// NewApplicableRegionSet сортирует регионы и запоминает глобальный регион мира (может быть nil)
func NewApplicableRegionSet(regions []*Region, global *Region) *ApplicableRegionSet {
	sorted := append([]*Region(nil), regions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Priority(), sorted[j].Priority()
		if pi != pj {
			return pi > pj
		}
		return sorted[i].ID() < sorted[j].ID()
	})
	return &ApplicableRegionSet{regions: sorted, global: global}
}

// Regions возвращает применимые регионы без глобального
func (s *ApplicableRegionSet) Regions() []*Region {
	return append([]*Region(nil), s.regions...)
}

// Size возвращает число применимых регионов
func (s *ApplicableRegionSet) Size() int { return len(s.regions) }

// QueryValue вычисляет действующее значение флага для субъекта (nil - анонимный запрос).
// Возвращает nil, если значение не задано нигде, включая значение по умолчанию.
func (s *ApplicableRegionSet) QueryValue(subject Subject, f Flag) any {
	values := s.QueryAllValues(subject, f)
	if len(values) == 0 {
		return nil
	}
	if _, isState := f.(*StateFlag); isState {
		return combineStates(values)
	}
	return values[0]
}

// QueryState объединяет несколько флагов состояния: DENY побеждает ALLOW.
// Возвращает 0, если ни один флаг не задан.
func (s *ApplicableRegionSet) QueryState(subject Subject, flags ...*StateFlag) State {
	var result State
	for _, f := range flags {
		v, ok := s.QueryValue(subject, f).(State)
		if !ok {
			continue
		}
		if v == Deny {
			return Deny
		}
		result = Allow
	}
	return result
}

// TestState сообщает, разрешено ли действие: true только при итоговом ALLOW
func (s *ApplicableRegionSet) TestState(subject Subject, flags ...*StateFlag) bool {
	return s.QueryState(subject, flags...) == Allow
}

// QueryAllValues возвращает все значения флага с максимального приоритета, на котором
// найдено хотя бы одно значение. Значения родителей применимых регионов не учитываются.
// Если ничего не найдено - значение глобального региона, затем значение по умолчанию.
func (s *ApplicableRegionSet) QueryAllValues(subject Subject, f Flag) []any {
	type considered struct {
		region *Region
		value  any
	}

	var (
		found          []considered
		minPriority    int
		havePriority   bool
		ignoredParents = make(map[*Region]struct{})
	)

	for _, r := range s.regions {
		priority := r.Priority()
		if havePriority && priority < minPriority {
			break
		}
		if _, ignored := ignoredParents[r]; ignored {
			continue
		}

		if v := effectiveValue(r, f, subject); v != nil {
			minPriority, havePriority = priority, true
			found = append(found, considered{region: r, value: v})
		}

		for p := r.Parent(); p != nil; p = p.Parent() {
			ignoredParents[p] = struct{}{}
		}
	}

	values := make([]any, 0, len(found))
	for _, c := range found {
		if _, ignored := ignoredParents[c.region]; ignored {
			continue
		}
		values = append(values, c.value)
	}
	if len(values) > 0 {
		return values
	}

	if s.global != nil {
		if v := effectiveValue(s.global, f, subject); v != nil {
			return []any{v}
		}
	}
	if def := f.Default(); def != nil {
		return []any{def}
	}
	return nil
}

// effectiveValue ищет значение флага в регионе и его родителях с учётом группы флага.
// Членство проверяется относительно исходного региона.
func effectiveValue(r *Region, f Flag, subject Subject) any {
	groupFlag := f.RegionGroupFlag()

	for cur := r; cur != nil; cur = cur.Parent() {
		v := cur.Flag(f)
		if v == nil {
			continue
		}
		if groupFlag == nil {
			return v
		}

		group, ok := cur.Flag(groupFlag).(RegionGroup)
		if !ok {
			group = groupFlag.DefaultGroup()
		}

		var assoc Association
		if subject == nil {
			assoc = NonMember
		} else {
			assoc = r.Association(subject)
		}
		if group.Contains(assoc) {
			return v
		}
	}
	return nil
}

func combineStates(values []any) any {
	var result any
	for _, v := range values {
		st, ok := v.(State)
		if !ok {
			continue
		}
		if st == Deny {
			return Deny
		}
		result = Allow
	}
	return result
}
