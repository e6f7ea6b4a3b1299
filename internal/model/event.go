package model

// EventType identifies a telemetry event emitted during a run.
type EventType string

const (
	EventVehicleArrival  EventType = "VEHICLE_ARRIVAL"
	EventSwapStart       EventType = "SWAP_START"
	EventSwapComplete    EventType = "SWAP_COMPLETE"
	EventLostSwap        EventType = "LOST_SWAP"
	EventChargeStart     EventType = "CHARGE_START"
	EventChargeComplete  EventType = "CHARGE_COMPLETE"
	EventQueueUpdate     EventType = "QUEUE_UPDATE"
	EventStationStockout EventType = "STATION_STOCKOUT"
	EventGridLimitHit    EventType = "GRID_LIMIT_HIT"
)

// Event is a single telemetry record. Meta holds one of the typed payloads
// below depending on Type.
type Event struct {
	SimTime  float64   `json:"sim_time"`
	EntityID string    `json:"entity_id"`
	Type     EventType `json:"event_type"`
	Meta     any       `json:"meta"`
}

// ArrivalMeta accompanies VEHICLE_ARRIVAL.
type ArrivalMeta struct {
	StationID   string `json:"station_id"`
	QueueLength int    `json:"queue_length"`
}

// LostSwapMeta accompanies LOST_SWAP.
type LostSwapMeta struct {
	StationID   string `json:"station_id"`
	Reason      string `json:"reason"`
	QueueLength int    `json:"queue_length"`
}

// SwapStartMeta accompanies SWAP_START.
type SwapStartMeta struct {
	StationID  string  `json:"station_id"`
	BatteryID  string  `json:"battery_id"`
	BatterySoC float64 `json:"battery_soc"`
	WaitTime   float64 `json:"wait_time"`
}

// SwapCompleteMeta accompanies SWAP_COMPLETE.
type SwapCompleteMeta struct {
	StationID string  `json:"station_id"`
	BatteryID string  `json:"battery_id"`
	Duration  float64 `json:"duration"`
}

// ChargeStartMeta accompanies CHARGE_START.
type ChargeStartMeta struct {
	StationID  string  `json:"station_id"`
	InitialSoC float64 `json:"initial_soc"`
}

// ChargeCompleteMeta accompanies CHARGE_COMPLETE.
type ChargeCompleteMeta struct {
	StationID string  `json:"station_id"`
	FinalSoC  float64 `json:"final_soc"`
	Duration  float64 `json:"duration"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// GridLimitMeta accompanies GRID_LIMIT_HIT.
type GridLimitMeta struct {
	StationID      string  `json:"station_id"`
	ActiveChargers int     `json:"active_chargers"`
	DrawKW         float64 `json:"draw_kw"`
}

// QueueUpdateMeta accompanies QUEUE_UPDATE.
type QueueUpdateMeta struct {
	StationID   string `json:"station_id"`
	QueueLength int    `json:"queue_length"`
}
