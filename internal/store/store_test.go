package store

import (
	"path/filepath"
	"testing"
	"time"

	"battery-swap-sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func sampleResult(id string) *model.SimulationResult {
	return &model.SimulationResult{
		RunID:          id,
		ScenarioName:   "baseline",
		Status:         model.StatusCompleted,
		DurationDays:   1,
		CityTotalSwaps: 42,
		CityLostSwaps:  3,
		TotalEnergyKWh: 123.4,
		StationKPIs:    []model.StationKPI{{StationID: "s1", TotalSwaps: 42}},
		CompletedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveResult(sampleResult("run-1")))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.CityTotalSwaps)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.Len(t, got.StationKPIs, 1)
	assert.Equal(t, "s1", got.StationKPIs[0].StationID)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for i, id := range []string{"old", "new"} {
		r := sampleResult(id)
		r.CompletedAt = time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.SaveResult(r))
	}

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestSaveAndListEvents(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveResult(sampleResult("run-1")))

	events := []model.Event{
		{SimTime: 10, Type: model.EventVehicleArrival, EntityID: "veh_000001",
			Meta: model.ArrivalMeta{StationID: "s1", QueueLength: 1}},
		{SimTime: 10, Type: model.EventSwapStart, EntityID: "veh_000001",
			Meta: model.SwapStartMeta{StationID: "s1", BatteryID: "b1"}},
		{SimTime: 100, Type: model.EventSwapComplete, EntityID: "veh_000001",
			Meta: model.SwapCompleteMeta{StationID: "s1", BatteryID: "b1", Duration: 90}},
	}
	require.NoError(t, s.SaveEvents("run-1", events))

	all, err := s.ListEvents("run-1", "", 100, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "VEHICLE_ARRIVAL", all[0].EventType)
	assert.Contains(t, all[0].MetaJSON, `"queue_length":1`)

	filtered, err := s.ListEvents("run-1", "SWAP_COMPLETE", 100, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 100.0, filtered[0].SimTime)

	page, err := s.ListEvents("run-1", "", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "SWAP_COMPLETE", page[0].EventType)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveResult(sampleResult("run-1")))
	require.NoError(t, s.SaveEvents("run-1", []model.Event{
		{SimTime: 1, Type: model.EventVehicleArrival, EntityID: "v1"},
	}))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalRuns)
	assert.Equal(t, int64(1), st.TotalEvents)
}
