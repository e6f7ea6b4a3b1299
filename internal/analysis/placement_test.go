package analysis

import (
	"testing"

	"battery-swap-sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demandClusters() []model.Location {
	var points []model.Location
	// Two tight clusters far apart.
	for i := 0; i < 10; i++ {
		points = append(points, model.Location{Lat: 31.20 + float64(i)*0.001, Lon: 121.40})
		points = append(points, model.Location{Lat: 31.90 + float64(i)*0.001, Lon: 121.90})
	}
	return points
}

func TestOptimizePlacementFindsClusters(t *testing.T) {
	centroids, meanDist, err := OptimizePlacement(demandClusters(), 2, 1)
	require.NoError(t, err)
	require.Len(t, centroids, 2)
	assert.Less(t, meanDist, 0.01, "tight clusters mean tight coverage")

	// One centroid near each cluster center, in some order.
	nearLow, nearHigh := 0, 0
	for _, c := range centroids {
		switch {
		case c.Lat > 31.19 && c.Lat < 31.22:
			nearLow++
		case c.Lat > 31.89 && c.Lat < 31.92:
			nearHigh++
		}
	}
	assert.Equal(t, 1, nearLow)
	assert.Equal(t, 1, nearHigh)
}

func TestOptimizePlacementDeterministic(t *testing.T) {
	a, _, err := OptimizePlacement(demandClusters(), 3, 42)
	require.NoError(t, err)
	b, _, err := OptimizePlacement(demandClusters(), 3, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOptimizePlacementErrors(t *testing.T) {
	_, _, err := OptimizePlacement(demandClusters(), 0, 1)
	assert.Error(t, err)

	_, _, err = OptimizePlacement([]model.Location{{Lat: 1, Lon: 1}}, 2, 1)
	assert.Error(t, err)
}

func TestRankByLostSwaps(t *testing.T) {
	kpis := []model.StationKPI{
		{StationID: "ok", TotalSwaps: 100, LostSwaps: 0, AvgWaitTimeSeconds: 5},
		{StationID: "worst", TotalSwaps: 50, LostSwaps: 30, AvgWaitTimeSeconds: 120},
		{StationID: "mid", TotalSwaps: 80, LostSwaps: 10, AvgWaitTimeSeconds: 40},
	}

	ranked := RankByLostSwaps(kpis)
	require.Len(t, ranked, 3)
	assert.Equal(t, "worst", ranked[0].StationID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.InDelta(t, 0.375, ranked[0].LostSwapRate, 1e-9)
	assert.Equal(t, "mid", ranked[1].StationID)
	assert.Equal(t, "ok", ranked[2].StationID)
	assert.Equal(t, 0.0, ranked[2].LostSwapRate)
}

func TestRankByLostSwapsTieBreaksOnWait(t *testing.T) {
	kpis := []model.StationKPI{
		{StationID: "a", LostSwaps: 5, AvgWaitTimeSeconds: 10},
		{StationID: "b", LostSwaps: 5, AvgWaitTimeSeconds: 90},
	}
	ranked := RankByLostSwaps(kpis)
	assert.Equal(t, "b", ranked[0].StationID)
}
