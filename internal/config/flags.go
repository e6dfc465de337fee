package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
)

// CustomFlag - собственный флаг, регистрируемый при старте
type CustomFlag struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

var flagTypes = map[string]reflect.Type{
	"state":    flag.StateType,
	"boolean":  flag.BoolType,
	"string":   flag.StringType,
	"integer":  flag.IntType,
	"double":   flag.DoubleType,
	"location": flag.LocationType,
	"set":      flag.SetType,
}

// ValueType возвращает тип значений флага
func (f CustomFlag) ValueType() (reflect.Type, error) {
	t, ok := flagTypes[strings.ToLower(f.Type)]
	if !ok {
		return nil, fmt.Errorf("flag %q: unknown type %q", f.Name, f.Type)
	}
	return t, nil
}

// DefaultValue приводит значение из YAML к типу флага; nil - без значения по умолчанию
func (f CustomFlag) DefaultValue() (any, error) {
	if f.Default == nil {
		return nil, nil
	}
	t, err := f.ValueType()
	if err != nil {
		return nil, err
	}

	switch t {
	case flag.StateType:
		if s, ok := f.Default.(string); ok {
			if state, ok := flag.ParseState(s); ok {
				return state, nil
			}
		}
	case flag.DoubleType:
		switch v := f.Default.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
	default:
		if reflect.TypeOf(f.Default) == t {
			return f.Default, nil
		}
	}
	return nil, fmt.Errorf("flag %q: default %v: %w", f.Name, f.Default, flag.ErrValueType)
}
