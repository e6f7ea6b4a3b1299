package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"battery-swap-sim/internal/analysis"
	"battery-swap-sim/internal/api/models"
	"battery-swap-sim/internal/data"
	"battery-swap-sim/internal/model"
	"battery-swap-sim/internal/sim"
	"battery-swap-sim/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SimulationHandler runs simulations and serves persisted runs.
type SimulationHandler struct {
	store           *store.Store
	network         *data.Network
	log             *zap.Logger
	maxDurationDays int
}

// NewSimulationHandler wires the handler. store may be nil, in which case
// results are returned but never persisted. network may be nil; requests
// with use_real_network then fail with a clear error.
func NewSimulationHandler(st *store.Store, net *data.Network, log *zap.Logger, maxDurationDays int) *SimulationHandler {
	if maxDurationDays <= 0 {
		maxDurationDays = 30
	}
	return &SimulationHandler{store: st, network: net, log: log, maxDurationDays: maxDurationDays}
}

// RunSimulation handles POST /api/v1/simulations.
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	res, events, ok := h.execute(c, req.Config)
	if !ok {
		return
	}
	h.persist(res, events, req.Options.PersistEvents)

	resp := models.SimulateResponse{Result: res}
	if req.Options.IncludeEvents {
		resp.Events = events
	}
	c.JSON(http.StatusOK, resp)
}

// CompareSimulations handles POST /api/v1/simulations/compare.
func (h *SimulationHandler) CompareSimulations(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	req.Scenario.RandomSeed = req.Baseline.RandomSeed
	baseRes, baseEvents, ok := h.execute(c, req.Baseline)
	if !ok {
		return
	}
	scenRes, scenEvents, ok := h.execute(c, req.Scenario)
	if !ok {
		return
	}
	scenRes.BaselineComparison = sim.CompareResults(baseRes, scenRes)

	h.persist(baseRes, baseEvents, req.Options.PersistEvents)
	h.persist(scenRes, scenEvents, req.Options.PersistEvents)

	c.JSON(http.StatusOK, models.CompareResponse{
		Baseline: baseRes,
		Scenario: scenRes,
		Rankings: analysis.RankByLostSwaps(scenRes.StationKPIs),
	})
}

// ListRuns handles GET /api/v1/simulations.
func (h *SimulationHandler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, models.ListRunsResponse{Runs: []store.RunSummary{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.store.ListRuns(limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ListRunsResponse{Runs: runs})
}

// GetRun handles GET /api/v1/simulations/:id.
func (h *SimulationHandler) GetRun(c *gin.Context) {
	if h.store == nil {
		notFound(c, c.Param("id"))
		return
	}
	res, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, c.Param("id"))
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SimulateResponse{Result: res})
}

// GetEvents handles GET /api/v1/simulations/:id/events.
func (h *SimulationHandler) GetEvents(c *gin.Context) {
	if h.store == nil {
		notFound(c, c.Param("id"))
		return
	}
	id := c.Param("id")
	if _, err := h.store.GetRun(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, id)
			return
		}
		internalError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	events, err := h.store.ListEvents(id, c.Query("type"), limit, offset)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.EventsResponse{
		RunID:  id,
		Events: events,
		Limit:  limit,
		Offset: offset,
	})
}

// execute validates and runs one configuration, writing the error response
// itself when something is wrong. The third return value reports success.
func (h *SimulationHandler) execute(c *gin.Context, cfg model.SimulationConfig) (*model.SimulationResult, []model.Event, bool) {
	if cfg.DurationDays > h.maxDurationDays {
		badRequest(c, "INVALID_CONFIG",
			"duration_days exceeds server limit of "+strconv.Itoa(h.maxDurationDays))
		return nil, nil, false
	}

	if cfg.UseRealNetwork {
		if h.network == nil || len(h.network.Stations) == 0 {
			badRequest(c, "NO_NETWORK_DATA", "server has no real network data loaded")
			return nil, nil, false
		}
		cfg.Stations = h.network.Stations
	}

	o, err := sim.NewOrchestrator(cfg, h.log)
	if err != nil {
		if errors.Is(err, model.ErrInvalidConfig) {
			badRequest(c, "INVALID_CONFIG", err.Error())
			return nil, nil, false
		}
		internalError(c, err)
		return nil, nil, false
	}
	if cfg.UseRealNetwork {
		o.SetObservedArrivalRates(h.network.MeanArrivalMinutes)
	}

	res := o.Run()
	if err := o.Audit(); err != nil {
		internalError(c, err)
		return nil, nil, false
	}
	return res, o.Events(), true
}

// persist writes a run to the store. Persistence failures are logged and
// swallowed: the caller already has the result in hand.
func (h *SimulationHandler) persist(res *model.SimulationResult, events []model.Event, withEvents bool) {
	if h.store == nil {
		return
	}
	if err := h.store.SaveResult(res); err != nil {
		h.log.Error("persist_result_failed", zap.String("run_id", res.RunID), zap.Error(err))
		return
	}
	if withEvents {
		if err := h.store.SaveEvents(res.RunID, events); err != nil {
			h.log.Error("persist_events_failed", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}
}

func badRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: msg},
	})
}

func notFound(c *gin.Context, id string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "RUN_NOT_FOUND",
			Message: "no run with id " + id,
		},
	})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()},
	})
}
