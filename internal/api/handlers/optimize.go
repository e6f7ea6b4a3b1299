package handlers

import (
	"net/http"

	"battery-swap-sim/internal/analysis"
	"battery-swap-sim/internal/api/models"

	"github.com/gin-gonic/gin"
)

// OptimizeHandler proposes station placements for a demand point cloud.
type OptimizeHandler struct{}

func NewOptimizeHandler() *OptimizeHandler {
	return &OptimizeHandler{}
}

// OptimizePlacement handles POST /api/v1/optimize.
func (h *OptimizeHandler) OptimizePlacement(c *gin.Context) {
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	locs, meanDist, err := analysis.OptimizePlacement(req.DemandPoints, req.StationCount, req.RandomSeed)
	if err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	c.JSON(http.StatusOK, models.OptimizeResponse{
		Locations:    locs,
		MeanDistance: meanDist,
	})
}
