package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer отдаёт HTTP API для просмотра и изменения регионов
type RestServer struct {
	router    *gin.Engine
	impl      implementation.Implementation
	worlds    implementation.WorldResolver
	port      string
	startTime time.Time
	httpSrv   *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port           string                        // адрес для запуска сервера, ":8088"
	Implementation implementation.Implementation // выбранная реализация фасада
	Worlds         implementation.WorldResolver  // миры хоста
	Registerer     prometheus.Registerer         // nil - регистр по умолчанию
	Gatherer       prometheus.Gatherer           // источник для /metrics
	Mode           string                        // режим gin
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware("wgw_api"))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware("wgw_api", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	rs := &RestServer{
		router:    router,
		impl:      config.Implementation,
		worlds:    config.Worlds,
		port:      config.Port,
		startTime: time.Now(),
	}
	rs.httpSrv = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	api.GET("/engine", rs.handleEngine)

	worlds := api.Group("/worlds/:world")
	{
		worlds.GET("/regions", rs.handleListRegions)
		worlds.POST("/regions", rs.handleCreateRegion)
		worlds.GET("/regions/:id", rs.handleGetRegion)
		worlds.DELETE("/regions/:id", rs.handleDeleteRegion)
		worlds.GET("/at", rs.handleRegionsAt)
		worlds.GET("/flags/:flag", rs.handleQueryFlag)
	}
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	logging.Info("🌐 HTTP API слушает %s", rs.port)

	err := rs.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop останавливает REST сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.httpSrv.Shutdown(ctx)
}
