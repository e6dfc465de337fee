// Package region описывает регионы защиты в виде, не зависящем от версии движка.
package region

import (
	"errors"
	"sort"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/google/uuid"
)

// ErrForeignRegion - родитель принадлежит другому миру или другой реализации
var ErrForeignRegion = errors.New("region belongs to another world or implementation")

// Shape - классификация формы региона
type Shape int

const (
	Cuboid Shape = iota + 1
	Polygon
	Global
)

func (s Shape) String() string {
	switch s {
	case Cuboid:
		return "cuboid"
	case Polygon:
		return "polygon"
	case Global:
		return "global"
	}
	return "unknown"
}

// Key идентифицирует регион: мир + id, оба в нижнем регистре.
// Две ручки одного региона имеют равные ключи.
type Key struct {
	World string
	ID    string
}

// Selection - геометрия региона в координатах хоста.
// Для кубоида Points - минимальный и максимальный углы,
// для полигона - вершины на высоте MinY.
type Selection struct {
	Shape  Shape
	Points []host.Location
	MinY   int
	MaxY   int
}

// Domain - владельцы или участники региона
type Domain interface {
	Players() []uuid.UUID
	AddPlayer(id uuid.UUID)
	RemovePlayer(id uuid.UUID)
	ContainsPlayer(id uuid.UUID) bool
	Groups() []string
	AddGroup(group string)
	RemoveGroup(group string)
	Size() int
}

// WrappedRegion - ссылка на регион движка
type WrappedRegion interface {
	ID() string
	World() host.World
	Key() Key
	Shape() Shape
	Selection() Selection

	Priority() int
	SetPriority(priority int)

	// Parent возвращает родителя, если он задан
	Parent() (WrappedRegion, bool)
	// SetParent задаёт родителя; nil снимает наследование
	SetParent(parent WrappedRegion) error

	// Flags возвращает все значения флагов региона по имени флага
	Flags() map[string]any
	// Flag возвращает значение, заданное в самом регионе
	Flag(f flag.WrappedFlag) (any, bool)
	// SetFlag задаёт значение; ошибка flag.ErrValueType при несоответствии типа
	SetFlag(f flag.WrappedFlag, value any) error
	UnsetFlag(f flag.WrappedFlag)

	Owners() Domain
	Members() Domain

	// Contains проверяет, что позиция лежит внутри региона (и в его мире)
	Contains(loc host.Location) bool
}

// Set - множество регионов по ключу
type Set map[Key]WrappedRegion

// NewSet создаёт множество из регионов
func NewSet(regions ...WrappedRegion) Set {
	s := make(Set, len(regions))
	for _, r := range regions {
		s.Add(r)
	}
	return s
}

// Add добавляет регион
func (s Set) Add(r WrappedRegion) {
	s[r.Key()] = r
}

// IDs возвращает id регионов по возрастанию
func (s Set) IDs() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k.ID)
	}
	sort.Strings(out)
	return out
}

// Sorted возвращает регионы по убыванию приоритета, затем по id
func (s Set) Sorted() []WrappedRegion {
	out := make([]WrappedRegion, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if pi, pj := out[i].Priority(), out[j].Priority(); pi != pj {
			return pi > pj
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}
