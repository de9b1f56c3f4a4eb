package heatload

const (
	// AirHeatCapacity of air in Wh/(m³·K).
	AirHeatCapacity = 0.34
	// WaterHeatCapacity of water in Wh/(kg·K).
	WaterHeatCapacity = 1.163
)

// DeltaT returns inside - outside, clamped at zero. A warmer far side is
// never credited as a gain.
func DeltaT(insideC, outsideC float64) float64 {
	return max(0, insideC-outsideC)
}
