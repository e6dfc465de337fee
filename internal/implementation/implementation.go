// Package implementation задаёт фасад над движком защиты. Для каждой
// поддерживаемой редакции движка есть своя реализация интерфейса.
package implementation

import (
	"errors"
	"reflect"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
)

var (
	// ErrUnsupported - привязанная редакция движка не поддерживает операцию
	ErrUnsupported = errors.New("operation is not supported by this engine version")
	// ErrFlagConflict - флаг с таким именем уже есть или реестр закрыт
	ErrFlagConflict = errors.New("flag cannot be registered")
	// ErrValueType - значение не подходит к типу флага
	ErrValueType = flag.ErrValueType
)

// Версии API реализаций
const (
	LegacyAPIVersion = -6
	ModernAPIVersion = 7
)

// Implementation - фасад над одной редакцией движка защиты.
// Отсутствие данных возвращается как (значение, false) или пустая коллекция, не как ошибка.
type Implementation interface {
	// APIVersion возвращает версию API: отрицательная для устаревших редакций
	APIVersion() int
	// EngineVersion возвращает строку версии привязанного плагина
	EngineVersion() string

	// GetFlag ищет флаг по имени без учёта регистра; false, если флага нет или тип не совпадает
	GetFlag(name string, valueType reflect.Type) (flag.WrappedFlag, bool)
	// QueryFlag вычисляет значение флага в позиции для игрока (nil - без игрока)
	QueryFlag(player *host.Player, loc host.Location, f flag.WrappedFlag) (any, bool)
	// RegisterFlag регистрирует собственный флаг
	RegisterFlag(name string, valueType reflect.Type, def any) (flag.WrappedFlag, error)

	// HasRegionManager сообщает, загружены ли регионы мира
	HasRegionManager(world host.World) bool
	GetRegion(world host.World, id string) (region.WrappedRegion, bool)
	GetRegions(world host.World) map[string]region.WrappedRegion
	// RegionsAt возвращает регионы, содержащие позицию; пусто, если мир не загружен
	RegionsAt(loc host.Location) region.Set
	// RegionsIn возвращает регионы, пересекающие прямоугольную область
	RegionsIn(minimum, maximum host.Location) region.Set
	// AddRegion создаёт кубоид (две точки) или полигон и сразу добавляет его в мир
	AddRegion(id string, points []host.Location, minY, maxY int) (region.WrappedRegion, bool)
	// RemoveRegion удаляет регион и возвращает все удалённые регионы; false, если мир не загружен
	RemoveRegion(world host.World, id string) (region.Set, bool)
}

// WorldResolver находит мир хоста по имени
type WorldResolver interface {
	World(name string) (host.World, bool)
}
