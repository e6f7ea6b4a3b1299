package sim

import (
	"fmt"

	"battery-swap-sim/internal/model"

	"go.uber.org/zap"
)

// StationStats accumulates per-station counters during a run.
type StationStats struct {
	TotalSwaps      int
	LostSwaps       int
	TotalWaitTime   float64
	MaxWaitTime     float64
	TotalChargeTime float64
	TotalEnergyKWh  float64
	PeakQueueLength int
	ChargerBusyTime float64
}

// AvgWaitTime is the mean wait per successful swap.
func (s *StationStats) AvgWaitTime() float64 {
	if s.TotalSwaps == 0 {
		return 0
	}
	return s.TotalWaitTime / float64(s.TotalSwaps)
}

// Station is one swap station modeled as a queuing node: a charger-bay
// resource, a filterable battery pool shared between the swap handler and
// the charging loop, and a FIFO charge queue feeding the background charger.
type Station struct {
	ID    string
	cfg   model.StationConfig
	sched *Scheduler
	sink  EventSink
	log   *zap.Logger

	chargers    *Resource
	pool        *FilterStore[*Battery]
	chargeQueue *Store[*Battery]

	activeChargers int
	queueLength    int

	Stats StationStats
}

// NewStation builds a station, seeds its battery inventory, and starts the
// background charging loop.
func NewStation(sched *Scheduler, cfg model.StationConfig, sink EventSink, log *zap.Logger) *Station {
	st := &Station{
		ID:          cfg.ID,
		cfg:         cfg,
		sched:       sched,
		sink:        sink,
		log:         log,
		chargers:    NewResource(sched, cfg.ChargerCount),
		pool:        NewFilterStore[*Battery](sched),
		chargeQueue: NewStore[*Battery](sched),
	}

	st.initBatteries()
	st.chargingLoop()

	log.Info("station_initialized",
		zap.String("station_id", st.ID),
		zap.Int("chargers", cfg.ChargerCount),
		zap.Int("batteries", cfg.TotalBatteries),
	)
	return st
}

// initBatteries seeds the warm-start inventory: the first 80% fully charged
// in the pool, the rest staggered at 50-90% SoC on the charge queue. The
// staggering rule is integer-based so it cannot drift with floating point.
func (st *Station) initBatteries() {
	full := int(float64(st.cfg.TotalBatteries) * 0.8)
	for i := 0; i < st.cfg.TotalBatteries; i++ {
		b := &Battery{
			ID:          fmt.Sprintf("%s_batt_%03d", st.ID, i),
			CapacityKWh: st.cfg.Battery.CapacityKWh,
			MinSwapSoC:  st.cfg.Battery.MinSwapSoC,
			Health:      1.0,
		}
		if i < full {
			b.SoC = 100.0
			b.Status = StatusAvailable
		} else {
			b.SoC = 50.0 + float64(i%5)*10
			if b.SoC < 95 {
				b.Status = StatusDepleted
			} else {
				b.Status = StatusAvailable
			}
		}
		if b.IsSwappable() {
			st.pool.Put(b)
		} else {
			st.chargeQueue.Put(b)
		}
	}
}

// HandleVehicleArrival processes one vehicle's swap request. A stockout
// observed on entry is definitive: the vehicle leaves immediately even if a
// battery finishes charging an instant later. onDone, if non-nil, receives
// whether the swap succeeded.
func (st *Station) HandleVehicleArrival(vehicleID string, onDone func(bool)) {
	arrival := st.sched.Now()
	st.queueLength++
	if st.queueLength > st.Stats.PeakQueueLength {
		st.Stats.PeakQueueLength = st.queueLength
	}

	st.emit(model.EventVehicleArrival, vehicleID, model.ArrivalMeta{
		StationID:   st.ID,
		QueueLength: st.queueLength,
	})

	swappable := func(b *Battery) bool { return b.IsSwappable() }
	if st.pool.Count(swappable) == 0 {
		st.emit(model.EventLostSwap, vehicleID, model.LostSwapMeta{
			StationID:   st.ID,
			Reason:      "stockout",
			QueueLength: st.queueLength,
		})
		st.Stats.LostSwaps++
		st.queueLength--
		st.log.Warn("lost_swap",
			zap.String("station_id", st.ID),
			zap.String("vehicle_id", vehicleID),
			zap.String("reason", "stockout"),
		)
		if onDone != nil {
			onDone(false)
		}
		return
	}

	// The check above saw a swappable battery, but a process scheduled at
	// the same instant may claim it before this Get runs; then we park on
	// the pool until a charge completes.
	st.pool.Get(swappable, func(b *Battery) {
		if st.pool.Count(swappable) == 0 {
			st.emit(model.EventStationStockout, st.ID, model.QueueUpdateMeta{
				StationID:   st.ID,
				QueueLength: st.queueLength,
			})
		}

		wait := st.sched.Now() - arrival
		st.Stats.TotalWaitTime += wait
		if wait > st.Stats.MaxWaitTime {
			st.Stats.MaxWaitTime = wait
		}

		st.emit(model.EventSwapStart, vehicleID, model.SwapStartMeta{
			StationID:  st.ID,
			BatteryID:  b.ID,
			BatterySoC: b.SoC,
			WaitTime:   wait,
		})
		b.Status = StatusInSwap

		st.sched.Schedule(float64(st.cfg.SwapTimeSeconds), func() {
			st.emit(model.EventSwapComplete, vehicleID, model.SwapCompleteMeta{
				StationID: st.ID,
				BatteryID: b.ID,
				Duration:  float64(st.cfg.SwapTimeSeconds),
			})

			b.Deplete(20.0)
			st.chargeQueue.Put(b)

			st.Stats.TotalSwaps++
			st.queueLength--
			st.emit(model.EventQueueUpdate, st.ID, model.QueueUpdateMeta{
				StationID:   st.ID,
				QueueLength: st.queueLength,
			})

			st.log.Debug("swap_complete",
				zap.String("station_id", st.ID),
				zap.String("vehicle_id", vehicleID),
				zap.Float64("wait_time", wait),
			)
			if onDone != nil {
				onDone(true)
			}
		})
	})
}

// chargingLoop is the long-lived background process: pull the oldest
// depleted battery, hold a charger bay through cooldown and charge, then
// return the battery to the pool. The loop moves on to the next queued
// battery as soon as a charge is underway, so up to charger_count batteries
// charge concurrently while the loop itself parks at most one battery
// waiting for a free bay.
func (st *Station) chargingLoop() {
	st.chargeQueue.Get(func(b *Battery) {
		st.chargers.Acquire(func() {
			chargeStart := st.sched.Now()
			st.activeChargers++

			if st.overGridLimit() {
				st.emit(model.EventGridLimitHit, st.ID, model.GridLimitMeta{
					StationID:      st.ID,
					ActiveChargers: st.activeChargers,
					DrawKW:         float64(st.activeChargers) * st.cfg.ChargePowerKW,
				})
			}

			charge := func() {
				b.Status = StatusCharging
				st.emit(model.EventChargeStart, b.ID, model.ChargeStartMeta{
					StationID:  st.ID,
					InitialSoC: b.SoC,
				})

				chargeTime := ChargeTimeSeconds(b.SoC, b.CapacityKWh, st.cfg.ChargePowerKW)
				st.sched.Schedule(chargeTime, func() {
					b.CompleteCharge()

					duration := st.sched.Now() - chargeStart
					energy := ChargeEnergyKWh(st.cfg.ChargePowerKW, duration)
					st.Stats.TotalChargeTime += duration
					st.Stats.TotalEnergyKWh += energy
					st.Stats.ChargerBusyTime += duration

					st.emit(model.EventChargeComplete, b.ID, model.ChargeCompleteMeta{
						StationID: st.ID,
						FinalSoC:  b.SoC,
						Duration:  duration,
						EnergyKWh: energy,
					})

					st.activeChargers--
					st.chargers.Release()
					st.pool.Put(b)
				})
			}

			if st.cfg.CooldownSeconds > 0 {
				b.Status = StatusCooling
				st.sched.Schedule(float64(st.cfg.CooldownSeconds), charge)
			} else {
				charge()
			}

			st.chargingLoop()
		})
	})
}

// overGridLimit reports whether the current draw exceeds the configured grid
// limit. The limit is observed only; charging is never throttled.
func (st *Station) overGridLimit() bool {
	if st.cfg.GridPowerLimitKW == nil {
		return false
	}
	return float64(st.activeChargers)*st.cfg.ChargePowerKW > *st.cfg.GridPowerLimitKW
}

// AvailableBatteryCount returns the number of swappable batteries in the
// pool right now.
func (st *Station) AvailableBatteryCount() int {
	return st.pool.Count(func(b *Battery) bool { return b.IsSwappable() })
}

// ChargingBatteryCount returns batteries queued for or on a charger.
func (st *Station) ChargingBatteryCount() int {
	return st.chargeQueue.Len() + st.activeChargers
}

// ActiveChargers returns how many charger bays are occupied right now.
func (st *Station) ActiveChargers() int { return st.activeChargers }

// QueueLength returns the number of vehicles currently at the station.
func (st *Station) QueueLength() int { return st.queueLength }

// Config returns the station's immutable configuration.
func (st *Station) Config() model.StationConfig { return st.cfg }

func (st *Station) emit(et model.EventType, entityID string, meta any) {
	st.sink.Emit(model.Event{
		SimTime:  st.sched.Now(),
		EntityID: entityID,
		Type:     et,
		Meta:     meta,
	})
}
