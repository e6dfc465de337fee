// Package wrapped содержит ручки флагов и регионов поверх объектов движка,
// общие для всех редакций.
package wrapped

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
)

// Flag - ручка флага с двусторонним преобразованием значений
type Flag interface {
	flag.WrappedFlag
	// Native возвращает флаг движка
	Native() protection.Flag
	// ToNativeValue преобразует значение вызывающего в значение движка
	ToNativeValue(v any) (any, error)
	// FromNativeValue преобразует значение движка; false, если оно непредставимо
	FromNativeValue(native any) (any, bool)
}

type converter struct {
	typ  reflect.Type
	to   func(v any) (any, bool)
	from func(native any) (any, bool)
}

type wrappedFlag struct {
	native protection.Flag
	conv   converter
}

func (f *wrappedFlag) Name() string            { return f.native.Name() }
func (f *wrappedFlag) ValueType() reflect.Type { return f.conv.typ }
func (f *wrappedFlag) Native() protection.Flag { return f.native }
func (f *wrappedFlag) String() string          { return f.native.Name() }

func (f *wrappedFlag) DefaultValue() (any, bool) {
	def := f.native.Default()
	if def == nil {
		return nil, false
	}
	return f.conv.from(def)
}

func (f *wrappedFlag) ToNativeValue(v any) (any, error) {
	native, ok := f.conv.to(v)
	if !ok || !f.native.Accepts(native) {
		return nil, fmt.Errorf("%s: %w: ожидался %s, получено %T", f.Name(), flag.ErrValueType, f.conv.typ, v)
	}
	return native, nil
}

func (f *wrappedFlag) FromNativeValue(native any) (any, bool) {
	if native == nil {
		return nil, false
	}
	return f.conv.from(native)
}

// Wrap создаёт ручку по виду флага движка
func Wrap(native protection.Flag, worlds implementation.WorldResolver) Flag {
	return &wrappedFlag{native: native, conv: converterFor(native, worlds)}
}

// WrapAs создаёт ручку, только если тип значений флага совпадает с valueType
func WrapAs(native protection.Flag, valueType reflect.Type, worlds implementation.WorldResolver) (Flag, bool) {
	if native == nil {
		return nil, false
	}
	f := Wrap(native, worlds)
	if f.ValueType() != valueType {
		return nil, false
	}
	return f, true
}

// Unwrap возвращает ручку с преобразованием, если f создана этим пакетом
func Unwrap(f flag.WrappedFlag) (Flag, bool) {
	wf, ok := f.(Flag)
	return wf, ok
}

func converterFor(native protection.Flag, worlds implementation.WorldResolver) converter {
	switch native.(type) {
	case *protection.StateFlag:
		return stateConverter
	case *protection.BooleanFlag:
		return identity[bool]()
	case *protection.StringFlag:
		return identity[string]()
	case *protection.IntegerFlag:
		return identity[int]()
	case *protection.DoubleFlag:
		return doubleConverter
	case *protection.LocationFlag:
		return locationConverter(worlds)
	case *protection.SetFlag:
		return setConverter
	case *protection.RegionGroupFlag:
		return groupConverter
	}
	// Неизвестный вид флага: значения непредставимы
	return converter{
		typ:  reflect.TypeFor[any](),
		to:   func(any) (any, bool) { return nil, false },
		from: func(any) (any, bool) { return nil, false },
	}
}

func identity[T any]() converter {
	cast := func(v any) (any, bool) {
		t, ok := v.(T)
		return t, ok
	}
	return converter{typ: reflect.TypeFor[T](), to: cast, from: cast}
}

var stateConverter = converter{
	typ: flag.StateType,
	to: func(v any) (any, bool) {
		switch v {
		case flag.Allow:
			return protection.Allow, true
		case flag.Deny:
			return protection.Deny, true
		}
		return nil, false
	},
	from: func(native any) (any, bool) {
		switch native {
		case protection.Allow:
			return flag.Allow, true
		case protection.Deny:
			return flag.Deny, true
		}
		return nil, false
	},
}

var doubleConverter = converter{
	typ: flag.DoubleType,
	to: func(v any) (any, bool) {
		d, ok := v.(float64)
		return d, ok && isFinite(d)
	},
	from: func(native any) (any, bool) {
		d, ok := native.(float64)
		return d, ok && isFinite(d)
	},
}

func isFinite(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0)
}

func locationConverter(worlds implementation.WorldResolver) converter {
	return converter{
		typ: flag.LocationType,
		to: func(v any) (any, bool) {
			loc, ok := v.(host.Location)
			if !ok || loc.World.Name == "" {
				return nil, false
			}
			return protection.Location{
				World: loc.World.Name,
				X:     loc.X, Y: loc.Y, Z: loc.Z,
				Yaw: loc.Yaw, Pitch: loc.Pitch,
			}, true
		},
		from: func(native any) (any, bool) {
			loc, ok := native.(protection.Location)
			if !ok {
				return nil, false
			}
			world, ok := resolveWorld(worlds, loc.World)
			if !ok {
				return nil, false
			}
			return host.Location{
				World: world,
				X:     loc.X, Y: loc.Y, Z: loc.Z,
				Yaw: loc.Yaw, Pitch: loc.Pitch,
			}, true
		},
	}
}

func resolveWorld(worlds implementation.WorldResolver, name string) (host.World, bool) {
	if worlds == nil {
		return host.World{Name: name}, name != ""
	}
	return worlds.World(name)
}

var setConverter = converter{
	typ: flag.SetType,
	to: func(v any) (any, bool) {
		items, ok := v.([]string)
		if !ok {
			return nil, false
		}
		return protection.NewStringSet(items...), true
	},
	from: func(native any) (any, bool) {
		set, ok := native.(protection.StringSet)
		if !ok {
			return nil, false
		}
		return set.Sorted(), true
	},
}

var groupConverter = converter{
	typ: flag.StringType,
	to: func(v any) (any, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		g, ok := protection.ParseRegionGroup(s)
		return g, ok
	},
	from: func(native any) (any, bool) {
		g, ok := native.(protection.RegionGroup)
		if !ok || g.String() == "unknown" {
			return nil, false
		}
		return g.String(), true
	},
}

// NewNativeFlag создаёт флаг движка для регистрации по типу значений вызывающего.
// def == nil означает отсутствие значения по умолчанию.
func NewNativeFlag(name string, valueType reflect.Type, def any) (protection.Flag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: пустое имя флага", implementation.ErrFlagConflict)
	}
	if def != nil && reflect.TypeOf(def) != valueType {
		return nil, fmt.Errorf("%s: %w: значение по умолчанию %T, тип флага %s", name, flag.ErrValueType, def, valueType)
	}

	switch valueType {
	case flag.StateType:
		var state protection.State
		if def != nil {
			native, ok := stateConverter.to(def)
			if !ok {
				return nil, fmt.Errorf("%s: %w: %v", name, flag.ErrValueType, def)
			}
			state = native.(protection.State)
		}
		return protection.NewStateFlag(name, state), nil
	case flag.BoolType:
		f := protection.NewBooleanFlag(name)
		if def != nil {
			f = f.WithDefault(def.(bool))
		}
		return f, nil
	case flag.StringType:
		f := protection.NewStringFlag(name)
		if def != nil {
			f = f.WithDefault(def.(string))
		}
		return f, nil
	case flag.IntType:
		f := protection.NewIntegerFlag(name)
		if def != nil {
			f = f.WithDefault(def.(int))
		}
		return f, nil
	case flag.DoubleType:
		f := protection.NewDoubleFlag(name)
		if def != nil {
			if !isFinite(def.(float64)) {
				return nil, fmt.Errorf("%s: %w: %v", name, flag.ErrValueType, def)
			}
			f = f.WithDefault(def.(float64))
		}
		return f, nil
	case flag.LocationType, flag.SetType:
		if def != nil {
			return nil, fmt.Errorf("%s: %w: флаги %s не поддерживают значение по умолчанию", name, implementation.ErrUnsupported, valueType)
		}
		if valueType == flag.LocationType {
			return protection.NewLocationFlag(name), nil
		}
		return protection.NewSetFlag(name), nil
	}
	return nil, fmt.Errorf("%s: %w: неподдерживаемый тип %s", name, flag.ErrValueType, valueType)
}
