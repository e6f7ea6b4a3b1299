package sim

import (
	"testing"

	"battery-swap-sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStationConfig(id string, batteries, chargers int) model.StationConfig {
	cfg := model.StationConfig{
		ID:             id,
		TotalBatteries: batteries,
		ChargerCount:   chargers,
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestStation(t *testing.T, cfg model.StationConfig) (*Station, *Scheduler, *Telemetry) {
	t.Helper()
	sched := NewScheduler()
	tel := NewTelemetry()
	return NewStation(sched, cfg, tel, zap.NewNop()), sched, tel
}

func TestStationWarmStartInventory(t *testing.T) {
	st, _, _ := newTestStation(t, testStationConfig("s1", 10, 2))

	// 80% start full in the pool; the remaining two start at 80% and 90%
	// SoC, below the swap threshold, and go straight onto chargers.
	assert.Equal(t, 8, st.AvailableBatteryCount())
	assert.Equal(t, 2, st.ChargingBatteryCount())
}

func TestStationSwapFlow(t *testing.T) {
	st, sched, tel := newTestStation(t, testStationConfig("s1", 10, 2))

	var succeeded bool
	sched.Schedule(0, func() {
		st.HandleVehicleArrival("veh_000001", func(ok bool) { succeeded = ok })
	})
	sched.RunUntil(3600)

	assert.True(t, succeeded)
	assert.Equal(t, 1, st.Stats.TotalSwaps)
	assert.Equal(t, 0, st.Stats.LostSwaps)
	assert.Equal(t, 0, st.QueueLength())

	starts := tel.ByType(model.EventSwapStart)
	require.Len(t, starts, 1)
	sm := starts[0].Meta.(model.SwapStartMeta)
	assert.Equal(t, "s1", sm.StationID)
	assert.Equal(t, 0.0, sm.WaitTime)
	assert.GreaterOrEqual(t, sm.BatterySoC, 95.0)

	completes := tel.ByType(model.EventSwapComplete)
	require.Len(t, completes, 1)
	assert.Equal(t, 90.0, completes[0].SimTime, "swap takes swap_time_seconds")

	// The swapped-out battery is depleted to 20% and recharged; by the end
	// of the hour it is back in the pool.
	assert.Equal(t, 10, st.AvailableBatteryCount())
}

func TestStationStockoutLosesVehicleImmediately(t *testing.T) {
	// One battery at 50% SoC: it charges from t=0 and the pool stays empty
	// until roughly t=270.
	st, sched, tel := newTestStation(t, testStationConfig("s1", 1, 1))
	require.Equal(t, 0, st.AvailableBatteryCount())

	var firstOK, secondOK bool
	sched.Schedule(10, func() {
		st.HandleVehicleArrival("veh_000001", func(ok bool) { firstOK = ok })
	})
	sched.Schedule(300, func() {
		st.HandleVehicleArrival("veh_000002", func(ok bool) { secondOK = ok })
	})
	sched.RunUntil(3600)

	assert.False(t, firstOK, "stockout on entry is definitive")
	assert.True(t, secondOK)
	assert.Equal(t, 1, st.Stats.LostSwaps)
	assert.Equal(t, 1, st.Stats.TotalSwaps)

	lost := tel.ByType(model.EventLostSwap)
	require.Len(t, lost, 1)
	assert.Equal(t, "stockout", lost[0].Meta.(model.LostSwapMeta).Reason)
	assert.Equal(t, 10.0, lost[0].SimTime)
}

func TestStationChargersRunConcurrently(t *testing.T) {
	// Two depleted batteries (80% and 90% SoC) and two chargers: charges
	// run side by side, so both finish by t=120 (sequentially the second
	// would not finish before t=180).
	st, sched, _ := newTestStation(t, testStationConfig("s1", 10, 2))

	sched.RunUntil(130)
	assert.Equal(t, 10, st.AvailableBatteryCount())
	assert.Equal(t, 0, st.ChargingBatteryCount())
}

func TestStationSingleChargerSerializes(t *testing.T) {
	st, sched, tel := newTestStation(t, testStationConfig("s1", 10, 1))

	// The 80% battery queued first and charges first (120 s), then the 90%
	// one takes the bay for 60 s more.
	sched.RunUntil(130)
	assert.Equal(t, 9, st.AvailableBatteryCount())

	sched.RunUntil(200)
	assert.Equal(t, 10, st.AvailableBatteryCount())

	completes := tel.ByType(model.EventChargeComplete)
	require.Len(t, completes, 2)
	assert.Equal(t, 120.0, completes[0].SimTime)
	assert.Equal(t, 180.0, completes[1].SimTime)
}

func TestStationCooldownDelaysCharge(t *testing.T) {
	cfg := testStationConfig("s1", 5, 2)
	cfg.CooldownSeconds = 30
	st, sched, tel := newTestStation(t, cfg)

	// One battery starts at 90% SoC; cooldown 30 s plus 60 s of charge.
	sched.RunUntil(100)
	assert.Equal(t, 5, st.AvailableBatteryCount())

	completes := tel.ByType(model.EventChargeComplete)
	require.Len(t, completes, 1)
	cm := completes[0].Meta.(model.ChargeCompleteMeta)
	assert.Equal(t, 90.0, completes[0].SimTime)
	assert.Equal(t, 90.0, cm.Duration, "reported duration includes cooldown")
}

func TestStationGridLimitObserved(t *testing.T) {
	cfg := testStationConfig("s1", 10, 2)
	limit := 60.0
	cfg.GridPowerLimitKW = &limit
	st, sched, tel := newTestStation(t, cfg)

	sched.RunUntil(200)

	// Two 60 kW chargers against a 60 kW limit: the second activation
	// crosses it. Charging is never throttled, only flagged.
	hits := tel.ByType(model.EventStationStockout)
	assert.Empty(t, hits)
	gridHits := tel.ByType(model.EventGridLimitHit)
	require.NotEmpty(t, gridHits)
	gm := gridHits[0].Meta.(model.GridLimitMeta)
	assert.Equal(t, 2, gm.ActiveChargers)
	assert.Equal(t, 120.0, gm.DrawKW)

	assert.Equal(t, 10, st.AvailableBatteryCount())
}

func TestStationDepletedBatteryCyclesBack(t *testing.T) {
	st, sched, tel := newTestStation(t, testStationConfig("s1", 5, 4))

	sched.Schedule(0, func() { st.HandleVehicleArrival("veh_000001", nil) })
	sched.RunUntil(7200)

	// After the swap the battery recharges from 20%: all five end available.
	assert.Equal(t, 5, st.AvailableBatteryCount())

	var swapped string
	for _, e := range tel.ByType(model.EventSwapComplete) {
		swapped = e.Meta.(model.SwapCompleteMeta).BatteryID
	}
	require.NotEmpty(t, swapped)

	found := false
	for _, e := range tel.ByType(model.EventChargeStart) {
		if e.EntityID == swapped {
			found = true
			assert.Equal(t, 20.0, e.Meta.(model.ChargeStartMeta).InitialSoC)
		}
	}
	assert.True(t, found, "swapped battery must re-enter charging")

	// From 20% on a 5 kWh pack at 60 kW the recharge takes exactly 300 s
	// and draws 60 * 0.75 * (300/3600) = 3.75 kWh.
	for _, e := range tel.ByType(model.EventChargeComplete) {
		if e.EntityID != swapped {
			continue
		}
		cm := e.Meta.(model.ChargeCompleteMeta)
		assert.Equal(t, 300.0, cm.Duration)
		assert.InDelta(t, 3.75, cm.EnergyKWh, 1e-9)
		assert.Equal(t, 100.0, cm.FinalSoC)
	}
}

func TestStationPeakQueueTracksConcurrentArrivals(t *testing.T) {
	st, sched, _ := newTestStation(t, testStationConfig("s1", 10, 2))

	for i := 0; i < 3; i++ {
		sched.Schedule(0, func() { st.HandleVehicleArrival("v", nil) })
	}
	sched.RunUntil(600)

	assert.Equal(t, 3, st.Stats.PeakQueueLength)
	assert.Equal(t, 3, st.Stats.TotalSwaps)
}
