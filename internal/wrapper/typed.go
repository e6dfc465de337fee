package wrapper

import (
	"reflect"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
)

// GetFlag ищет флаг с типом значений T
func GetFlag[T any](impl implementation.Implementation, name string) (flag.Flag[T], bool) {
	f, ok := impl.GetFlag(name, reflect.TypeFor[T]())
	if !ok {
		return flag.Flag[T]{}, false
	}
	return flag.As[T](f)
}

// QueryFlag вычисляет значение флага в позиции; player может быть nil
func QueryFlag[T any](impl implementation.Implementation, player *host.Player, loc host.Location, f flag.Flag[T]) (T, bool) {
	var zero T
	if f.WrappedFlag == nil {
		return zero, false
	}
	v, ok := impl.QueryFlag(player, loc, f.WrappedFlag)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// RegisterFlag регистрирует флаг с типом T; def == nil - без значения по умолчанию
func RegisterFlag[T any](impl implementation.Implementation, name string, def *T) (flag.Flag[T], error) {
	var raw any
	if def != nil {
		raw = *def
	}
	f, err := impl.RegisterFlag(name, reflect.TypeFor[T](), raw)
	if err != nil {
		return flag.Flag[T]{}, err
	}
	typed, ok := flag.As[T](f)
	if !ok {
		return flag.Flag[T]{}, implementation.ErrValueType
	}
	return typed, nil
}

// RegionFlag читает значение флага, заданное прямо в регионе
func RegionFlag[T any](r region.WrappedRegion, f flag.Flag[T]) (T, bool) {
	var zero T
	if f.WrappedFlag == nil {
		return zero, false
	}
	v, ok := r.Flag(f.WrappedFlag)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// SetRegionFlag задаёт значение флага в регионе
func SetRegionFlag[T any](r region.WrappedRegion, f flag.Flag[T], value T) error {
	return r.SetFlag(f.WrappedFlag, value)
}
