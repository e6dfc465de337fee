package legacy

import (
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	engine "github.com/Andre601/WorldGuardWrapper/internal/protection/legacy"
)

// toVector переводит позицию хоста в вектор API 6.x (округление вниз делает движок)
func toVector(loc host.Location) engine.Vector {
	return engine.NewVector(loc.X, loc.Y, loc.Z)
}

// toBlockVector2DList отбрасывает высоту и округляет вершины вниз до блока
func toBlockVector2DList(points []host.Location) []engine.BlockVector2D {
	out := make([]engine.BlockVector2D, len(points))
	for i, p := range points {
		b := toVector(p).ToBlockVector()
		out[i] = engine.BlockVector2D{X: b.X, Z: b.Z}
	}
	return out
}
