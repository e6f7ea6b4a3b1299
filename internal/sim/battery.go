package sim

// BatteryStatus is the lifecycle state of a battery unit.
type BatteryStatus string

const (
	StatusAvailable BatteryStatus = "AVAILABLE"
	StatusCharging  BatteryStatus = "CHARGING"
	StatusCooling   BatteryStatus = "COOLING"
	StatusDepleted  BatteryStatus = "DEPLETED"
	StatusInSwap    BatteryStatus = "IN_SWAP"
)

// Battery is one battery unit, exclusively owned by its station. Only the
// station's swap handler and charging loop mutate it.
type Battery struct {
	ID          string
	SoC         float64 // 0..100
	CapacityKWh float64
	MinSwapSoC  float64
	CycleCount  int
	Health      float64 // 0..1
	Status      BatteryStatus
}

// IsSwappable reports whether the battery can be handed to a vehicle:
// AVAILABLE and charged to at least the swap threshold.
func (b *Battery) IsSwappable() bool {
	return b.Status == StatusAvailable && b.SoC >= b.MinSwapSoC
}

// EnergyRemainingKWh returns the usable energy left in the pack.
func (b *Battery) EnergyRemainingKWh() float64 {
	return b.SoC / 100.0 * b.CapacityKWh * b.Health
}

// Deplete simulates the battery having been driven in a vehicle: SoC drops
// to targetSoC, the cycle counter advances, status becomes DEPLETED.
func (b *Battery) Deplete(targetSoC float64) {
	if targetSoC < 0 {
		targetSoC = 0
	}
	b.SoC = targetSoC
	b.Status = StatusDepleted
	b.CycleCount++
}

// CompleteCharge tops the battery up and returns it to AVAILABLE.
func (b *Battery) CompleteCharge() {
	b.SoC = 100.0
	b.Status = StatusAvailable
}

// ChargeTimeSeconds computes charge duration from soc to 100% with the
// two-segment curve: full rated power up to 80% SoC, half power above.
func ChargeTimeSeconds(soc, capacityKWh, powerKW float64) float64 {
	var fast float64
	if soc < 80 {
		fastEnergy := (80 - soc) / 100.0 * capacityKWh
		fast = fastEnergy / powerKW * 3600
	}
	var slow float64
	if from := max(soc, 80); from < 100 {
		slowEnergy := (100 - from) / 100.0 * capacityKWh
		slow = slowEnergy / (powerKW * 0.5) * 3600
	}
	return fast + slow
}

// ChargeEnergyKWh estimates energy drawn from the grid over a charge of the
// given duration. The 0.75 factor averages in the tapered tail; it feeds the
// energy KPI only and is deliberately decoupled from the SoC jump to 100%.
func ChargeEnergyKWh(powerKW, durationSeconds float64) float64 {
	return powerKW * 0.75 * (durationSeconds / 3600)
}
