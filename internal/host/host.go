// Package host описывает объекты игрового сервера, которые предоставляет хост:
// миры, позиции, игроков и установленные плагины.
package host

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Andre601/WorldGuardWrapper/internal/vec"
	"github.com/google/uuid"
)

// World идентифицирует мир по имени
type World struct {
	Name string
}

// String возвращает имя мира
func (w World) String() string {
	return w.Name
}

// Location представляет точку в конкретном мире
type Location struct {
	World World
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

// NewLocation создаёт позицию без направления взгляда
func NewLocation(world World, x, y, z float64) Location {
	return Location{World: world, X: x, Y: y, Z: z}
}

// Vector возвращает координаты позиции
func (l Location) Vector() vec.Vec3Float {
	return vec.Vec3Float{X: l.X, Y: l.Y, Z: l.Z}
}

// Block возвращает координаты блока, содержащего позицию
func (l Location) Block() vec.Vec3 {
	return l.Vector().Floor()
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%.2f, %.2f, %.2f)", l.World.Name, l.X, l.Y, l.Z)
}

// Player представляет подключенного игрока
type Player struct {
	ID       uuid.UUID
	Name     string
	Groups   []string
	Location Location
}

// InGroup проверяет членство игрока в группе прав (без учёта регистра)
func (p *Player) InGroup(group string) bool {
	for _, g := range p.Groups {
		if strings.EqualFold(g, group) {
			return true
		}
	}
	return false
}

// Plugin описывает установленный плагин хоста
type Plugin struct {
	Name    string
	Version string
	// Instance - объект API плагина, тип зависит от плагина
	Instance any
}

// Server хранит загруженные миры и установленные плагины
type Server struct {
	mu      sync.RWMutex
	worlds  map[string]World
	plugins map[string]*Plugin
}

// NewServer создаёт сервер с указанными мирами
func NewServer(worlds ...string) *Server {
	s := &Server{
		worlds:  make(map[string]World),
		plugins: make(map[string]*Plugin),
	}
	for _, name := range worlds {
		s.worlds[strings.ToLower(name)] = World{Name: name}
	}
	return s
}

// World возвращает мир по имени
func (s *Server) World(name string) (World, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.worlds[strings.ToLower(name)]
	return w, ok
}

// Worlds возвращает все загруженные миры
func (s *Server) Worlds() []World {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]World, 0, len(s.worlds))
	for _, w := range s.worlds {
		result = append(result, w)
	}
	return result
}

// LoadWorld добавляет мир на сервер
func (s *Server) LoadWorld(name string) World {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := World{Name: name}
	s.worlds[strings.ToLower(name)] = w
	return w
}

// RegisterPlugin устанавливает плагин
func (s *Server) RegisterPlugin(p *Plugin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plugins[strings.ToLower(p.Name)] = p
}

// Plugin возвращает плагин по имени
func (s *Server) Plugin(name string) (*Plugin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plugins[strings.ToLower(name)]
	return p, ok
}
