package heatload

// Ventilation is the air exchange of one room.
type Ventilation struct {
	VolumeM3          float64
	AirChangesPerHour float64
	RoomTempC         float64
	SupplyTempC       float64
}

func (v Ventilation) Validate() error {
	if v.VolumeM3 < 0 {
		return ErrNegativeVolume
	}
	if v.AirChangesPerHour < 0 {
		return ErrNegativeAirChanges
	}
	return nil
}

// DeltaT is evaluated on every call so it always reflects the current
// temperatures.
func (v Ventilation) DeltaT() float64 {
	return DeltaT(v.RoomTempC, v.SupplyTempC)
}

// AirFlow returns the exchanged air volume in m³/h.
func (v Ventilation) AirFlow() float64 {
	return v.VolumeM3 * v.AirChangesPerHour
}

// HeatLoss returns the ventilation loss in W: Q = V·n · c_air · ΔT.
func (v Ventilation) HeatLoss() float64 {
	return v.AirFlow() * AirHeatCapacity * v.DeltaT()
}
