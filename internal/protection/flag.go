package protection

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Flag - определение именованной типизированной настройки региона.
// Значение флага хранится в регионе; сам флаг неизменяем.
type Flag interface {
	// Name возвращает имя флага (уникально в реестре без учёта регистра)
	Name() string
	// Default возвращает значение по умолчанию или nil
	Default() any
	// RegionGroupFlag возвращает флаг группы, к которой применяется значение, или nil
	RegionGroupFlag() *RegionGroupFlag
	// Accepts проверяет, что v - допустимое нативное значение флага
	Accepts(v any) bool
	// Marshal преобразует значение в простые типы для хранения
	Marshal(v any) (any, error)
	// Unmarshal восстанавливает значение из простых типов
	Unmarshal(raw any) (any, error)
}

// FlagOption настраивает флаг при создании
type FlagOption func(*baseFlag)

// WithRegionGroup задаёт группу по умолчанию для флага <name>-group
func WithRegionGroup(g RegionGroup) FlagOption {
	return func(b *baseFlag) {
		b.group = newRegionGroupFlag(b.name+"-group", g)
	}
}

// baseFlag - общая часть всех флагов
type baseFlag struct {
	name  string
	group *RegionGroupFlag
}

func newBaseFlag(name string, opts []FlagOption) baseFlag {
	b := baseFlag{name: name}
	b.group = newRegionGroupFlag(name+"-group", GroupAll)
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *baseFlag) Name() string                      { return b.name }
func (b *baseFlag) RegionGroupFlag() *RegionGroupFlag { return b.group }

func (b *baseFlag) String() string { return b.name }

// ============ State ============

// State - трёхзначное состояние: неустановлено (nil), Allow или Deny
type State int

const (
	Allow State = iota + 1
	Deny
)

func (s State) String() string {
	switch s {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "none"
	}
}

// StateFlag - флаг allow/deny
type StateFlag struct {
	baseFlag
	def State
}

// NewStateFlag создаёт флаг состояния; def == 0 означает отсутствие значения по умолчанию
func NewStateFlag(name string, def State, opts ...FlagOption) *StateFlag {
	return &StateFlag{baseFlag: newBaseFlag(name, opts), def: def}
}

func (f *StateFlag) Default() any {
	if f.def == 0 {
		return nil
	}
	return f.def
}

func (f *StateFlag) Accepts(v any) bool {
	s, ok := v.(State)
	return ok && (s == Allow || s == Deny)
}

func (f *StateFlag) Marshal(v any) (any, error) {
	if !f.Accepts(v) {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return v.(State).String(), nil
}

func (f *StateFlag) Unmarshal(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s: %w: ожидалась строка, получено %T", f.name, ErrInvalidValue, raw)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return Allow, nil
	case "deny":
		return Deny, nil
	}
	return nil, fmt.Errorf("%s: %w: %q", f.name, ErrInvalidValue, s)
}

// ============ Boolean ============

// BooleanFlag - логический флаг
type BooleanFlag struct {
	baseFlag
	def *bool
}

// NewBooleanFlag создаёт логический флаг без значения по умолчанию
func NewBooleanFlag(name string, opts ...FlagOption) *BooleanFlag {
	return &BooleanFlag{baseFlag: newBaseFlag(name, opts)}
}

// WithDefault возвращает копию флага со значением по умолчанию
func (f *BooleanFlag) WithDefault(v bool) *BooleanFlag {
	cp := *f
	cp.def = &v
	return &cp
}

func (f *BooleanFlag) Default() any {
	if f.def == nil {
		return nil
	}
	return *f.def
}

func (f *BooleanFlag) Accepts(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (f *BooleanFlag) Marshal(v any) (any, error) {
	if !f.Accepts(v) {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return v, nil
}

func (f *BooleanFlag) Unmarshal(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %q", f.name, ErrInvalidValue, v)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", f.name, ErrInvalidValue, raw)
}

// ============ String ============

// StringFlag - строковый флаг
type StringFlag struct {
	baseFlag
	def *string
}

// NewStringFlag создаёт строковый флаг
func NewStringFlag(name string, opts ...FlagOption) *StringFlag {
	return &StringFlag{baseFlag: newBaseFlag(name, opts)}
}

// WithDefault возвращает копию флага со значением по умолчанию
func (f *StringFlag) WithDefault(v string) *StringFlag {
	cp := *f
	cp.def = &v
	return &cp
}

func (f *StringFlag) Default() any {
	if f.def == nil {
		return nil
	}
	return *f.def
}

func (f *StringFlag) Accepts(v any) bool {
	_, ok := v.(string)
	return ok
}

func (f *StringFlag) Marshal(v any) (any, error) {
	if !f.Accepts(v) {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return v, nil
}

func (f *StringFlag) Unmarshal(raw any) (any, error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", f.name, ErrInvalidValue, raw)
}

// ============ Integer ============

// IntegerFlag - целочисленный флаг
type IntegerFlag struct {
	baseFlag
	def *int
}

// NewIntegerFlag создаёт целочисленный флаг
func NewIntegerFlag(name string, opts ...FlagOption) *IntegerFlag {
	return &IntegerFlag{baseFlag: newBaseFlag(name, opts)}
}

// WithDefault возвращает копию флага со значением по умолчанию
func (f *IntegerFlag) WithDefault(v int) *IntegerFlag {
	cp := *f
	cp.def = &v
	return &cp
}

func (f *IntegerFlag) Default() any {
	if f.def == nil {
		return nil
	}
	return *f.def
}

func (f *IntegerFlag) Accepts(v any) bool {
	_, ok := v.(int)
	return ok
}

func (f *IntegerFlag) Marshal(v any) (any, error) {
	if !f.Accepts(v) {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return v, nil
}

func (f *IntegerFlag) Unmarshal(raw any) (any, error) {
	if n, ok := toInt(raw); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, raw)
}

// ============ Double ============

// DoubleFlag - флаг с плавающей точкой
type DoubleFlag struct {
	baseFlag
	def *float64
}

// NewDoubleFlag создаёт флаг с плавающей точкой
func NewDoubleFlag(name string, opts ...FlagOption) *DoubleFlag {
	return &DoubleFlag{baseFlag: newBaseFlag(name, opts)}
}

// WithDefault возвращает копию флага со значением по умолчанию
func (f *DoubleFlag) WithDefault(v float64) *DoubleFlag {
	cp := *f
	cp.def = &v
	return &cp
}

func (f *DoubleFlag) Default() any {
	if f.def == nil {
		return nil
	}
	return *f.def
}

func (f *DoubleFlag) Accepts(v any) bool {
	d, ok := v.(float64)
	return ok && !math.IsNaN(d) && !math.IsInf(d, 0)
}

func (f *DoubleFlag) Marshal(v any) (any, error) {
	if !f.Accepts(v) {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return v, nil
}

func (f *DoubleFlag) Unmarshal(raw any) (any, error) {
	if d, ok := toFloat(raw); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, raw)
}

// ============ Location ============

// Location - нативное значение LocationFlag
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

// LocationFlag - флаг с позицией (точка телепорта, спавна)
type LocationFlag struct {
	baseFlag
}

// NewLocationFlag создаёт флаг позиции
func NewLocationFlag(name string, opts ...FlagOption) *LocationFlag {
	return &LocationFlag{baseFlag: newBaseFlag(name, opts)}
}

func (f *LocationFlag) Default() any { return nil }

func (f *LocationFlag) Accepts(v any) bool {
	_, ok := v.(Location)
	return ok
}

func (f *LocationFlag) Marshal(v any) (any, error) {
	loc, ok := v.(Location)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	return map[string]any{
		"world": loc.World,
		"x":     loc.X,
		"y":     loc.Y,
		"z":     loc.Z,
		"yaw":   float64(loc.Yaw),
		"pitch": float64(loc.Pitch),
	}, nil
}

func (f *LocationFlag) Unmarshal(raw any) (any, error) {
	m, ok := toStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %T", f.name, ErrInvalidValue, raw)
	}

	world, _ := m["world"].(string)
	x, okX := toFloat(m["x"])
	y, okY := toFloat(m["y"])
	z, okZ := toFloat(m["z"])
	if !okX || !okY || !okZ {
		return nil, fmt.Errorf("%s: %w: неполные координаты", f.name, ErrInvalidValue)
	}
	yaw, _ := toFloat(m["yaw"])
	pitch, _ := toFloat(m["pitch"])

	return Location{World: world, X: x, Y: y, Z: z, Yaw: float32(yaw), Pitch: float32(pitch)}, nil
}

// ============ Set ============

// StringSet - нативное значение SetFlag
type StringSet map[string]struct{}

// NewStringSet создаёт множество из элементов
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Sorted возвращает элементы по возрастанию
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for it := range s {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

// SetFlag - флаг-множество строк (например, заблокированные команды)
type SetFlag struct {
	baseFlag
}

// NewSetFlag создаёт флаг-множество
func NewSetFlag(name string, opts ...FlagOption) *SetFlag {
	return &SetFlag{baseFlag: newBaseFlag(name, opts)}
}

func (f *SetFlag) Default() any { return nil }

func (f *SetFlag) Accepts(v any) bool {
	_, ok := v.(StringSet)
	return ok
}

func (f *SetFlag) Marshal(v any) (any, error) {
	set, ok := v.(StringSet)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrInvalidValue, v)
	}
	sorted := set.Sorted()
	out := make([]any, len(sorted))
	for i, s := range sorted {
		out[i] = s
	}
	return out, nil
}

func (f *SetFlag) Unmarshal(raw any) (any, error) {
	switch v := raw.(type) {
	case []any:
		set := make(StringSet, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("%s: %w: элемент %T", f.name, ErrInvalidValue, it)
			}
			set[s] = struct{}{}
		}
		return set, nil
	case []string:
		return NewStringSet(v...), nil
	}
	return nil, fmt.Errorf("%s: %w: %T", f.name, ErrInvalidValue, raw)
}

// ============ helpers ============

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

func toStringMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}
