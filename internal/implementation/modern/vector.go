package modern

import (
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	engine "github.com/Andre601/WorldGuardWrapper/internal/protection/modern"
)

// toBlockVector3 округляет позицию вниз до блока
func toBlockVector3(loc host.Location) engine.BlockVector3 {
	b := loc.Block()
	return engine.At(b.X, b.Y, b.Z)
}

// toBlockVector2List отбрасывает высоту вершин
func toBlockVector2List(points []host.Location) []engine.BlockVector2 {
	out := make([]engine.BlockVector2, len(points))
	for i, p := range points {
		b := toBlockVector3(p)
		out[i] = engine.BlockVector2{X: b.X, Z: b.Z}
	}
	return out
}
