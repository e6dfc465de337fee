package protection

import (
	"fmt"
	"strings"
)

// Association - отношение субъекта к региону
type Association int

const (
	NonMember Association = iota
	Member
	Owner
)

// RegionGroup определяет, к кому применяется значение флага
type RegionGroup int

const (
	GroupAll RegionGroup = iota + 1
	GroupMembers
	GroupOwners
	GroupNonMembers
	GroupNonOwners
	GroupNone
)

var regionGroupNames = map[RegionGroup]string{
	GroupAll:        "all",
	GroupMembers:    "members",
	GroupOwners:     "owners",
	GroupNonMembers: "nonmembers",
	GroupNonOwners:  "nonowners",
	GroupNone:       "none",
}

func (g RegionGroup) String() string {
	if name, ok := regionGroupNames[g]; ok {
		return name
	}
	return "unknown"
}

// Contains проверяет, входит ли отношение в группу
func (g RegionGroup) Contains(a Association) bool {
	switch g {
	case GroupAll:
		return true
	case GroupMembers:
		return a == Owner || a == Member
	case GroupOwners:
		return a == Owner
	case GroupNonMembers:
		return a == NonMember
	case GroupNonOwners:
		return a != Owner
	default:
		return false
	}
}

// ParseRegionGroup разбирает имя группы ("members", "non_members" ...)
func ParseRegionGroup(s string) (RegionGroup, bool) {
	norm := strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", ""), "-", "")
	for g, name := range regionGroupNames {
		if name == norm {
			return g, true
		}
	}
	return 0, false
}

// RegionGroupFlag - служебный флаг <name>-group
type RegionGroupFlag struct {
	name string
	def  RegionGroup
}

func newRegionGroupFlag(name string, def RegionGroup) *RegionGroupFlag {
	return &RegionGroupFlag{name: name, def: def}
}

func (f *RegionGroupFlag) Name() string                      { return f.name }
func (f *RegionGroupFlag) RegionGroupFlag() *RegionGroupFlag { return nil }
func (f *RegionGroupFlag) String() string                    { return f.name }

// Default возвращает группу по умолчанию
func (f *RegionGroupFlag) Default() any { return f.def }

// DefaultGroup возвращает группу по умолчанию в типизированном виде
func (f *RegionGroupFlag) DefaultGroup() RegionGroup { return f.def }

func (f *RegionGroupFlag) Accepts(v any) bool {
	g, ok := v.(RegionGroup)
	if !ok {
		return false
	}
	_, known := regionGroupNames[g]
	return known
}

func (f *RegionGroupFlag) Marshal(v any) (any, error) {
	if !f.Accepts(v) {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return v.(RegionGroup).String(), nil
}

func (f *RegionGroupFlag) Unmarshal(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %T", f.name, ErrInvalidValue, raw)
	}
	g, ok := ParseRegionGroup(s)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", f.name, ErrInvalidValue, s)
	}
	return g, nil
}
