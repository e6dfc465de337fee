package api

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
	"github.com/google/uuid"
)

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type pointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type locationDTO struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw,omitempty"`
	Pitch float32 `json:"pitch,omitempty"`
}

type domainDTO struct {
	Players []string `json:"players"`
	Groups  []string `json:"groups"`
}

type regionDTO struct {
	ID       string         `json:"id"`
	World    string         `json:"world"`
	Shape    string         `json:"shape"`
	Priority int            `json:"priority"`
	Parent   string         `json:"parent,omitempty"`
	Points   []pointDTO     `json:"points"`
	MinY     int            `json:"min_y"`
	MaxY     int            `json:"max_y"`
	Flags    map[string]any `json:"flags"`
	Owners   domainDTO      `json:"owners"`
	Members  domainDTO      `json:"members"`
}

type createRegionRequest struct {
	ID       string         `json:"id" binding:"required"`
	Points   []pointDTO     `json:"points" binding:"required,min=2"`
	MinY     int            `json:"min_y"`
	MaxY     int            `json:"max_y"`
	Priority int            `json:"priority"`
	Parent   string         `json:"parent"`
	Flags    map[string]any `json:"flags"`
}

type flagValueDTO struct {
	Flag  string `json:"flag"`
	Type  string `json:"type"`
	Set   bool   `json:"set"`
	Value any    `json:"value,omitempty"`
}

type engineDTO struct {
	APIVersion          int    `json:"api_version"`
	EngineVersion       string `json:"engine_version"`
	Legacy              bool   `json:"legacy"`
	SupportsCustomFlags bool   `json:"supports_custom_flags"`
}

func newDomainDTO(d region.Domain) domainDTO {
	out := domainDTO{Players: make([]string, 0, d.Size()), Groups: d.Groups()}
	for _, id := range d.Players() {
		out.Players = append(out.Players, id.String())
	}
	sort.Strings(out.Players)
	if out.Groups == nil {
		out.Groups = []string{}
	}
	return out
}

func newRegionDTO(r region.WrappedRegion) regionDTO {
	sel := r.Selection()
	dto := regionDTO{
		ID:       r.ID(),
		World:    r.World().Name,
		Shape:    r.Shape().String(),
		Priority: r.Priority(),
		Points:   make([]pointDTO, 0, len(sel.Points)),
		MinY:     sel.MinY,
		MaxY:     sel.MaxY,
		Flags:    make(map[string]any),
		Owners:   newDomainDTO(r.Owners()),
		Members:  newDomainDTO(r.Members()),
	}
	if parent, ok := r.Parent(); ok {
		dto.Parent = parent.ID()
	}
	for _, p := range sel.Points {
		dto.Points = append(dto.Points, pointDTO{X: p.X, Y: p.Y, Z: p.Z})
	}
	for name, v := range r.Flags() {
		dto.Flags[name] = encodeFlagValue(v)
	}
	return dto
}

func newRegionDTOs(set region.Set) []regionDTO {
	out := make([]regionDTO, 0, len(set))
	for _, r := range set.Sorted() {
		out = append(out, newRegionDTO(r))
	}
	return out
}

// encodeFlagValue готовит значение флага к JSON
func encodeFlagValue(v any) any {
	if loc, ok := v.(host.Location); ok {
		return locationDTO{World: loc.World.Name, X: loc.X, Y: loc.Y, Z: loc.Z, Yaw: loc.Yaw, Pitch: loc.Pitch}
	}
	return v
}

var typeNames = map[reflect.Type]string{
	flag.StateType:    "state",
	flag.BoolType:     "boolean",
	flag.StringType:   "string",
	flag.IntType:      "integer",
	flag.DoubleType:   "double",
	flag.LocationType: "location",
	flag.SetType:      "set",
}

// decodeFlagValue переводит значение из JSON в тип значений флага
func decodeFlagValue(f flag.WrappedFlag, raw any, worlds implementation.WorldResolver) (any, error) {
	bad := fmt.Errorf("flag %s: %v: %w", f.Name(), raw, flag.ErrValueType)

	switch f.ValueType() {
	case flag.StateType:
		if s, ok := raw.(string); ok {
			if state, ok := flag.ParseState(s); ok {
				return state, nil
			}
		}
	case flag.BoolType:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case flag.StringType:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case flag.IntType:
		if n, ok := raw.(float64); ok && n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n), nil
		}
	case flag.DoubleType:
		if n, ok := raw.(float64); ok {
			return n, nil
		}
	case flag.SetType:
		items, ok := raw.([]any)
		if !ok {
			return nil, bad
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, bad
			}
			out = append(out, s)
		}
		return out, nil
	case flag.LocationType:
		return decodeLocation(raw, worlds, bad)
	}
	return nil, bad
}

func decodeLocation(raw any, worlds implementation.WorldResolver, bad error) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, bad
	}
	name, _ := m["world"].(string)
	world, ok := worlds.World(name)
	if !ok {
		return nil, bad
	}
	coord := func(key string) float64 {
		n, _ := m[key].(float64)
		return n
	}
	loc := host.NewLocation(world, coord("x"), coord("y"), coord("z"))
	loc.Yaw = float32(coord("yaw"))
	loc.Pitch = float32(coord("pitch"))
	return loc, nil
}

func parsePlayer(id string, groups []string) (*host.Player, error) {
	if id == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &host.Player{ID: parsed, Groups: groups}, nil
}
