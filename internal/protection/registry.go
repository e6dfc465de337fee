package protection

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FlagRegistry - глобальный реестр флагов; имена уникальны без учёта регистра
type FlagRegistry struct {
	mu     sync.RWMutex
	flags  map[string]Flag
	locked bool
}

// NewFlagRegistry создаёт пустой реестр
func NewFlagRegistry() *FlagRegistry {
	return &FlagRegistry{flags: make(map[string]Flag)}
}

// NewDefaultFlagRegistry создаёт реестр со стандартными флагами
func NewDefaultFlagRegistry() *FlagRegistry {
	r := NewFlagRegistry()
	for _, f := range DefaultFlags() {
		r.flags[strings.ToLower(f.Name())] = f
	}
	return r
}

// Register добавляет флаг в реестр
func (r *FlagRegistry) Register(f Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		return fmt.Errorf("register %q: %w", f.Name(), ErrRegistryLocked)
	}

	key := strings.ToLower(f.Name())
	if _, exists := r.flags[key]; exists {
		return fmt.Errorf("register %q: %w", f.Name(), ErrFlagConflict)
	}
	if strings.HasSuffix(key, "-group") {
		if _, exists := r.flags[strings.TrimSuffix(key, "-group")]; exists {
			return fmt.Errorf("register %q: %w", f.Name(), ErrFlagConflict)
		}
	}

	r.flags[key] = f
	return nil
}

// Get ищет флаг по имени без учёта регистра.
// Имя вида "<flag>-group" возвращает флаг группы зарегистрированного флага.
func (r *FlagRegistry) Get(name string) Flag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(name)
	if f, ok := r.flags[key]; ok {
		return f
	}
	if base, ok := strings.CutSuffix(key, "-group"); ok {
		if f, ok := r.flags[base]; ok && f.RegionGroupFlag() != nil {
			return f.RegionGroupFlag()
		}
	}
	return nil
}

// All возвращает все флаги, отсортированные по имени
func (r *FlagRegistry) All() []Flag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Flag, 0, len(r.flags))
	for _, f := range r.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Lock закрывает реестр для регистрации
func (r *FlagRegistry) Lock() {
	r.mu.Lock()
	r.locked = true
	r.mu.Unlock()
}

// IsLocked сообщает, закрыт ли реестр
func (r *FlagRegistry) IsLocked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// Size возвращает количество флагов
func (r *FlagRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flags)
}
