// Package wrapper выбирает реализацию фасада по установленному движку защиты
// и хранит её на всё время работы процесса.
//
// Выбор выполняется один раз через Init; дальнейшие вызовы Init возвращают
// тот же результат. Версию движка проверяет только фабрика реализации,
// вызывающий код ветвится по APIVersion().
package wrapper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	legacyimpl "github.com/Andre601/WorldGuardWrapper/internal/implementation/legacy"
	modernimpl "github.com/Andre601/WorldGuardWrapper/internal/implementation/modern"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/legacy"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/modern"
)

// EnginePluginName - имя плагина движка в менеджере плагинов хоста
const EnginePluginName = "WorldGuard"

var (
	// ErrNotInitialized - Instance вызван до Init
	ErrNotInitialized = errors.New("wrapper is not initialized")
	// ErrNoEngine - плагин движка не установлен
	ErrNoEngine = errors.New("protection engine is not installed")
	// ErrUnsupportedVersion - для установленной версии движка нет реализации
	ErrUnsupportedVersion = errors.New("unsupported protection engine version")
)

// factory строит реализацию для одной редакции движка
type factory struct {
	name  string
	major int
	build func(p *host.Plugin, server *host.Server, o *options) (implementation.Implementation, bool)
}

var factories = []factory{
	{
		name:  "modern",
		major: 7,
		build: func(p *host.Plugin, server *host.Server, o *options) (implementation.Implementation, bool) {
			wg, ok := p.Instance.(*modern.WorldGuard)
			if !ok {
				return nil, false
			}
			return modernimpl.New(wg, server, modernimpl.WithRemovalStrategy(o.removal)), true
		},
	},
	{
		name:  "legacy",
		major: 6,
		build: func(p *host.Plugin, server *host.Server, _ *options) (implementation.Implementation, bool) {
			plugin, ok := p.Instance.(*legacy.Plugin)
			if !ok {
				return nil, false
			}
			return legacyimpl.New(plugin, server), true
		},
	},
}

// majorVersion извлекает старший номер из строки вида "7.0.9-beta1"
func majorVersion(version string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return major, true
}

// Select находит плагин движка на сервере и создаёт подходящую реализацию
func Select(server *host.Server, opts ...Option) (implementation.Implementation, error) {
	o := newOptions(opts)

	p, ok := server.Plugin(EnginePluginName)
	if !ok || p.Instance == nil {
		return nil, ErrNoEngine
	}

	major, ok := majorVersion(p.Version)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnsupportedVersion, p.Name, p.Version)
	}

	for _, f := range factories {
		if f.major != major {
			continue
		}
		impl, ok := f.build(p, server, o)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s has unexpected API object %T",
				ErrUnsupportedVersion, p.Name, p.Version, p.Instance)
		}
		logging.Info("🛡️ Выбрана реализация %s (API %d) для %s %s", f.name, impl.APIVersion(), p.Name, p.Version)
		if o.instrumented() {
			impl = newInstrumented(impl, o)
		}
		return impl, nil
	}

	return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedVersion, p.Name, p.Version)
}

type selection struct {
	impl implementation.Implementation
	err  error
}

var (
	initOnce sync.Once
	selected atomic.Pointer[selection]
)

// Init выполняет выбор реализации один раз за процесс.
// Повторные вызовы возвращают первый результат, включая ошибку.
func Init(server *host.Server, opts ...Option) (implementation.Implementation, error) {
	initOnce.Do(func() {
		impl, err := Select(server, opts...)
		if err != nil {
			logging.Error("❌ Реализация фасада не выбрана: %v", err)
		}
		selected.Store(&selection{impl: impl, err: err})
	})
	s := selected.Load()
	return s.impl, s.err
}

// Instance возвращает реализацию, выбранную Init
func Instance() (implementation.Implementation, error) {
	s := selected.Load()
	if s == nil {
		return nil, ErrNotInitialized
	}
	return s.impl, s.err
}

// MustInstance - Instance, паникующий при ошибке
func MustInstance() implementation.Implementation {
	impl, err := Instance()
	if err != nil {
		panic(err)
	}
	return impl
}
