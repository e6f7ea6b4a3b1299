package handlers

import (
	"net/http"

	"battery-swap-sim/internal/api/models"
	"battery-swap-sim/internal/config"
	"battery-swap-sim/internal/data"
	"battery-swap-sim/internal/model"
	"battery-swap-sim/internal/store"

	"github.com/gin-gonic/gin"
)

// StationHandler serves the configured station fleet and helper endpoints.
type StationHandler struct {
	network *data.Network
	store   *store.Store
}

func NewStationHandler(net *data.Network, st *store.Store) *StationHandler {
	return &StationHandler{network: net, store: st}
}

// ListStations handles GET /api/v1/stations.
func (h *StationHandler) ListStations(c *gin.Context) {
	stations := []model.StationConfig{}
	if h.network != nil {
		stations = h.network.Stations
	}
	c.JSON(http.StatusOK, models.StationsResponse{Stations: stations})
}

// ExampleConfig handles GET /api/v1/example-config. It returns a runnable
// simulate request so clients can discover the input shape.
func (h *StationHandler) ExampleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, models.SimulateRequest{
		Config: config.ExampleSimulation(),
	})
}

// Stats handles GET /stats.
func (h *StationHandler) Stats(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, models.StatsResponse{})
		return
	}
	st, err := h.store.Stats()
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatsResponse{Stats: st})
}
