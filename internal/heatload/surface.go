package heatload

// Surface is a single heat-transferring element (wall, window, floor,
// ceiling, door).
type Surface struct {
	Name    string
	AreaM2  float64
	UValue  float64 // W/m²K
	DeltaTK float64 // already clamped at construction
}

// NewSurface builds a surface from the room setpoint and the temperature on
// the other side of the element.
func NewSurface(name string, areaM2, uValue, setpointC, otherSideC float64) (Surface, error) {
	s := Surface{
		Name:    name,
		AreaM2:  areaM2,
		UValue:  uValue,
		DeltaTK: DeltaT(setpointC, otherSideC),
	}
	if err := s.Validate(); err != nil {
		return Surface{}, err
	}
	return s, nil
}

// NewSurfaceFromSides computes the area once from two side lengths.
func NewSurfaceFromSides(name string, side1M, side2M, uValue, setpointC, otherSideC float64) (Surface, error) {
	if side1M < 0 || side2M < 0 {
		return Surface{}, ErrNegativeArea
	}
	return NewSurface(name, side1M*side2M, uValue, setpointC, otherSideC)
}

func (s Surface) Validate() error {
	if s.AreaM2 < 0 {
		return ErrNegativeArea
	}
	if s.UValue < 0 {
		return ErrNegativeUValue
	}
	return nil
}

// HeatLoss returns the transmission loss in W: Q = A * U * ΔT.
func (s Surface) HeatLoss() float64 {
	return s.AreaM2 * s.UValue * max(0, s.DeltaTK)
}
