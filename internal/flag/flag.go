// Package flag описывает флаги защиты в виде, не зависящем от версии движка.
//
// Значения флагов передаются в закрытом наборе типов:
//
//	state      -> State
//	boolean    -> bool
//	string     -> string
//	integer    -> int
//	double     -> float64
//	location   -> host.Location
//	set        -> []string (отсортирован, без повторов)
//	<f>-group  -> string (all, members, owners, nonmembers, nonowners, none)
package flag

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/host"
)

// ErrValueType - значение не соответствует типу флага
var ErrValueType = errors.New("value does not match flag type")

// State - значение флага состояния
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
	}
	return "none"
}

// MarshalText кодирует состояние как allow/deny
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseState разбирает allow/deny без учёта регистра
func ParseState(s string) (State, bool) {
	switch strings.ToLower(s) {
	case "allow":
		return Allow, true
	case "deny":
		return Deny, true
	}
	return 0, false
}

// Типы значений, поддерживаемые обёртками
var (
	StateType    = reflect.TypeFor[State]()
	BoolType     = reflect.TypeFor[bool]()
	StringType   = reflect.TypeFor[string]()
	IntType      = reflect.TypeFor[int]()
	DoubleType   = reflect.TypeFor[float64]()
	LocationType = reflect.TypeFor[host.Location]()
	SetType      = reflect.TypeFor[[]string]()
)

// ValueTypes - все поддерживаемые типы значений
var ValueTypes = []reflect.Type{StateType, BoolType, StringType, IntType, DoubleType, LocationType, SetType}

// WrappedFlag - ссылка на флаг движка, не раскрывающая его тип
type WrappedFlag interface {
	// Name возвращает имя флага в реестре
	Name() string
	// ValueType возвращает тип значений флага со стороны вызывающего
	ValueType() reflect.Type
	// DefaultValue возвращает значение по умолчанию, если оно задано
	DefaultValue() (any, bool)
}

// Flag - типизированный вид WrappedFlag
type Flag[T any] struct {
	WrappedFlag
}

// As проверяет тип значений флага и возвращает типизированный вид
func As[T any](f WrappedFlag) (Flag[T], bool) {
	if f == nil || f.ValueType() != reflect.TypeFor[T]() {
		return Flag[T]{}, false
	}
	return Flag[T]{WrappedFlag: f}, true
}

// Default возвращает значение по умолчанию в типе T
func (f Flag[T]) Default() (T, bool) {
	var zero T
	v, ok := f.DefaultValue()
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
