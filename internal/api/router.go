package api

import (
	"net/http"

	"battery-swap-sim/internal/api/handlers"
	"battery-swap-sim/internal/api/middleware"
	"battery-swap-sim/internal/config"
	"battery-swap-sim/internal/data"
	"battery-swap-sim/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the HTTP surface. st and net may be nil; the affected
// endpoints degrade instead of failing at startup.
func NewRouter(cfg config.Server, st *store.Store, net *data.Network, log *zap.Logger) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	simHandler := handlers.NewSimulationHandler(st, net, log, cfg.MaxDurationDays)
	stationHandler := handlers.NewStationHandler(net, st)
	optimizeHandler := handlers.NewOptimizeHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/stats", stationHandler.Stats)

	api := router.Group("/api/v1")
	{
		api.POST("/simulations", simHandler.RunSimulation)
		api.POST("/simulations/compare", simHandler.CompareSimulations)
		api.GET("/simulations", simHandler.ListRuns)
		api.GET("/simulations/:id", simHandler.GetRun)
		api.GET("/simulations/:id/events", simHandler.GetEvents)

		api.GET("/stations", stationHandler.ListStations)
		api.GET("/example-config", stationHandler.ExampleConfig)

		api.POST("/optimize", optimizeHandler.OptimizePlacement)
	}

	return router
}
