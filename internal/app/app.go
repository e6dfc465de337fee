// Package app собирает сервер из конфигурации: хранилище регионов, шину
// событий, редакцию движка защиты и выбранную реализацию фасада.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/config"
	"github.com/Andre601/WorldGuardWrapper/internal/eventbus"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/legacy"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/modern"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
	"github.com/Andre601/WorldGuardWrapper/internal/wrapper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// eventSource - источник событий изменения регионов
const eventSource = "worldguard-wrapper"

// selectImplementation выбирает реализацию; по умолчанию один раз за процесс
var selectImplementation = wrapper.Init

// App - собранный сервер
type App struct {
	Config   *config.Config
	Server   *host.Server
	Driver   store.Driver
	Bus      eventbus.EventBus
	Impl     implementation.Implementation
	Registry *prometheus.Registry

	saveAll  func(context.Context) error
	subs     []eventbus.Subscription
	exporter *eventbus.MetricsExporter

	autosaves    *prometheus.CounterVec
	autosaveQuit chan struct{}
	autosaveDone chan struct{}
}

// New создаёт хранилище, движок и фасад. При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{
		Config:   cfg,
		Server:   host.NewServer(cfg.Engine.Worlds...),
		Registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			_ = a.Close(ctx)
		}
	}()

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.Driver, err = store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open region storage: %w", err)
	}
	logging.Info("💾 Хранилище регионов: %s", a.Driver.Name())

	if err = a.openBus(); err != nil {
		return nil, err
	}

	plugin, load, err := a.bootEngine()
	if err != nil {
		return nil, err
	}
	a.Server.RegisterPlugin(plugin)

	removal, err := cfg.Engine.Removal()
	if err != nil {
		return nil, err
	}
	a.Impl, err = selectImplementation(a.Server,
		wrapper.WithMetrics(a.Registry),
		wrapper.WithRemovalStrategy(removal),
	)
	if err != nil {
		return nil, err
	}

	// флаги регистрируются до загрузки, иначе их сохранённые значения останутся непрочитанными
	if err = registerCustomFlags(a.Impl, cfg.Engine.Flags); err != nil {
		return nil, err
	}
	if err = load(ctx); err != nil {
		return nil, fmt.Errorf("load worlds: %w", err)
	}
	a.startAutosave(cfg.Engine.AutosaveInterval)
	return a, nil
}

// startAutosave периодически сохраняет изменённые миры; interval <= 0 отключает автосохранение
func (a *App) startAutosave(interval time.Duration) {
	a.autosaves = promauto.With(a.Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "wgw",
		Name:      "region_autosave_total",
		Help:      "Запуски автосохранения регионов по результату.",
	}, []string{"result"})
	if interval <= 0 {
		logging.Info("💾 Автосохранение регионов отключено")
		return
	}

	a.autosaveQuit = make(chan struct{})
	a.autosaveDone = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(a.autosaveDone)

		for {
			select {
			case <-ticker.C:
				if err := a.Save(context.Background()); err != nil {
					a.autosaves.WithLabelValues("error").Inc()
					logging.Error("❌ Автосохранение регионов: %v", err)
					continue
				}
				a.autosaves.WithLabelValues("ok").Inc()
			case <-a.autosaveQuit:
				return
			}
		}
	}()
	logging.Info("💾 Автосохранение регионов каждые %s", interval)
}

func (a *App) stopAutosave() {
	if a.autosaveQuit == nil {
		return
	}
	close(a.autosaveQuit)
	<-a.autosaveDone
	a.autosaveQuit = nil
}

func (a *App) openBus() error {
	cfg := a.Config.EventBus

	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return nil
	case "memory":
		a.Bus = eventbus.NewMemoryBus(0)
	case "jetstream", "nats":
		bus, err := eventbus.NewJetStreamBus(cfg.JetStream)
		if err != nil {
			return fmt.Errorf("open event bus: %w", err)
		}
		a.Bus = bus
	default:
		return fmt.Errorf("unknown event bus driver %q", cfg.Driver)
	}
	eventbus.Init(a.Bus)

	sub, err := eventbus.StartLoggingListener(a.Bus)
	if err != nil {
		return fmt.Errorf("subscribe event logger: %w", err)
	}
	a.subs = append(a.subs, sub)

	if cfg.MetricsInterval > 0 {
		exporter := eventbus.NewMetricsExporter(a.Bus, a.Registry)
		if err := exporter.Start(cfg.MetricsInterval); err != nil {
			return fmt.Errorf("start event metrics: %w", err)
		}
		a.exporter = exporter
	}
	return nil
}

// bootEngine создаёт редакцию движка и описывает плагин для хоста.
// Миры загружает возвращённая функция.
func (a *App) bootEngine() (*host.Plugin, func(context.Context) error, error) {
	cfg := a.Config.Engine
	version := cfg.EngineVersion()

	var listener protection.ChangeListener
	if a.Bus != nil {
		listener = protection.NewEventBusListener(eventbus.Global(), eventSource)
	}

	switch strings.ToLower(cfg.Edition) {
	case "legacy":
		p := legacy.NewPlugin(version, a.Driver)
		if listener != nil {
			p.AddListener(listener)
		}
		a.saveAll = p.SaveAll
		load := func(ctx context.Context) error { return p.LoadWorlds(ctx, cfg.Worlds...) }
		return &host.Plugin{Name: wrapper.EnginePluginName, Version: version, Instance: p}, load, nil

	case "", "modern":
		wg := modern.New(version, a.Driver)
		container := wg.Platform().RegionContainer()
		if listener != nil {
			container.AddListener(listener)
		}
		a.saveAll = container.SaveAll
		load := func(ctx context.Context) error { return container.Load(ctx, a.Server.Worlds()...) }
		return &host.Plugin{Name: wrapper.EnginePluginName, Version: version, Instance: wg}, load, nil
	}
	return nil, nil, fmt.Errorf("unknown engine edition %q", cfg.Edition)
}

// registerCustomFlags регистрирует флаги из конфигурации.
// Редакция без поддержки регистрации пропускает их с предупреждением.
func registerCustomFlags(impl implementation.Implementation, flags []config.CustomFlag) error {
	for _, f := range flags {
		t, err := f.ValueType()
		if err != nil {
			return err
		}
		def, err := f.DefaultValue()
		if err != nil {
			return err
		}

		_, err = impl.RegisterFlag(f.Name, t, def)
		switch {
		case errors.Is(err, implementation.ErrUnsupported):
			logging.Warn("⚠️ Флаг %s пропущен: движок %s (API %d) не поддерживает собственные флаги",
				f.Name, impl.EngineVersion(), impl.APIVersion())
		case err != nil:
			return fmt.Errorf("register flag %s: %w", f.Name, err)
		default:
			logging.Info("🏳️ Зарегистрирован флаг %s", f.Name)
		}
	}
	return nil
}

// Save сохраняет изменённые миры
func (a *App) Save(ctx context.Context) error {
	if a.saveAll == nil {
		return nil
	}
	return a.saveAll(ctx)
}

// Close останавливает автосохранение, сохраняет регионы и освобождает ресурсы
func (a *App) Close(ctx context.Context) error {
	a.stopAutosave()

	var errs []error
	if err := a.Save(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save regions: %w", err))
	}
	if a.exporter != nil {
		a.exporter.Stop()
	}
	for _, s := range a.subs {
		s.Unsubscribe()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
		eventbus.Init(nil)
	}
	if a.Driver != nil {
		if err := a.Driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close region storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
