package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/api"
	"github.com/Andre601/WorldGuardWrapper/internal/app"
	"github.com/Andre601/WorldGuardWrapper/internal/config"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию WGW_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// === ЛОГИРОВАНИЕ ===
	logging.SetLogDir(cfg.Logging.Dir)
	loggers := logging.GetLoggerManager()
	loggers.SetConsoleLevel(logging.ParseLevel(cfg.Logging.Level))
	logger, err := loggers.GetLogger("server")
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	logging.SetDefaultLogger(logger)
	defer loggers.CloseAll()

	logging.Info("🛡️ Запуск WorldGuardWrapper (редакция %s, версия %s)", cfg.Engine.Edition, cfg.Engine.EngineVersion())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Settings{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("⚠️ Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === ДВИЖОК И ФАСАД ===
	a, err := app.New(ctx, cfg)
	if err != nil {
		logging.Error("❌ Ошибка запуска: %v", err)
		loggers.CloseAll()
		log.Fatalf("❌ Ошибка запуска: %v", err)
	}

	rest := api.NewRestServer(api.Config{
		Port:           fmt.Sprintf(":%d", cfg.Server.GetHTTPPort()),
		Implementation: a.Impl,
		Worlds:         a.Server,
		Registerer:     a.Registry,
		Gatherer:       a.Registry,
		Mode:           cfg.Server.Mode,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- rest.Start() }()

	logging.Info("✅ Сервер готов: API %d, движок %s", a.Impl.APIVersion(), a.Impl.EngineVersion())
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetHTTPPort())

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, остановка...")
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ HTTP API остановлен с ошибкой: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки HTTP API: %v", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка сохранения регионов: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
