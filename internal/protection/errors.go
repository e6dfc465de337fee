package protection

import "errors"

var (
	// ErrFlagConflict - флаг с таким именем уже зарегистрирован
	ErrFlagConflict = errors.New("flag name already registered")
	// ErrRegistryLocked - реестр флагов закрыт для регистрации
	ErrRegistryLocked = errors.New("flag registry is locked")
	// ErrInvalidRegionID - идентификатор региона содержит недопустимые символы
	ErrInvalidRegionID = errors.New("invalid region id")
	// ErrCircularParent - установка родителя создала бы цикл
	ErrCircularParent = errors.New("circular parent inheritance")
	// ErrInvalidValue - значение не подходит для флага
	ErrInvalidValue = errors.New("invalid flag value")
	// ErrInvalidShape - недостаточно точек для построения региона
	ErrInvalidShape = errors.New("invalid region shape")
)
