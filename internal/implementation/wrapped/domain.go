package wrapped

import (
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/google/uuid"
)

// Domain - ручка списка владельцев или участников региона
type Domain struct {
	native *protection.DefaultDomain
}

func (d *Domain) Players() []uuid.UUID      { return d.native.Players() }
func (d *Domain) AddPlayer(id uuid.UUID)    { d.native.AddPlayer(id) }
func (d *Domain) RemovePlayer(id uuid.UUID) { d.native.RemovePlayer(id) }
func (d *Domain) Groups() []string          { return d.native.Groups() }
func (d *Domain) AddGroup(group string)     { d.native.AddGroup(group) }
func (d *Domain) RemoveGroup(group string)  { d.native.RemoveGroup(group) }
func (d *Domain) Size() int                 { return d.native.Size() }

// ContainsPlayer проверяет, что игрок входит в домен лично (без учёта групп)
func (d *Domain) ContainsPlayer(id uuid.UUID) bool {
	for _, p := range d.native.Players() {
		if p == id {
			return true
		}
	}
	return false
}
