package protection

import (
	"fmt"

	"github.com/Andre601/WorldGuardWrapper/internal/vec"
)

// BlockVector - целочисленные координаты блока
type BlockVector struct {
	X, Y, Z int
}

// BlockVector2D - координаты блока в горизонтальной плоскости
type BlockVector2D struct {
	X, Z int
}

// NewBlockVector создаёт BlockVector из vec.Vec3
func NewBlockVector(v vec.Vec3) BlockVector {
	return BlockVector{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec3 преобразует в vec.Vec3
func (b BlockVector) Vec3() vec.Vec3 {
	return vec.Vec3{X: b.X, Y: b.Y, Z: b.Z}
}

func (b BlockVector) String() string {
	return fmt.Sprintf("(%d, %d, %d)", b.X, b.Y, b.Z)
}

func (b BlockVector2D) String() string {
	return fmt.Sprintf("(%d, %d)", b.X, b.Z)
}
