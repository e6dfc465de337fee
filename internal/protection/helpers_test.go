package protection

import "github.com/google/uuid"

// newID строит детерминированный uuid для тестов
func newID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}
