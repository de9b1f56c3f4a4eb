package heatload

// Room is one heated room with its surfaces and optional ventilation.
type Room struct {
	Name      string
	SetpointC float64

	// SupplyReturnDeltaK is only needed to size the water flow.
	SupplyReturnDeltaK *float64

	Surfaces    []Surface
	Ventilation *Ventilation
}

func (r Room) Validate() error {
	for _, s := range r.Surfaces {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if r.Ventilation != nil {
		if err := r.Ventilation.Validate(); err != nil {
			return err
		}
	}
	if r.SupplyReturnDeltaK != nil && *r.SupplyReturnDeltaK < 0 {
		return ErrNegativeSupplyReturnDelta
	}
	return nil
}

// TransmissionLoss sums the losses of all surfaces in W.
func (r Room) TransmissionLoss() float64 {
	var sum float64
	for _, s := range r.Surfaces {
		sum += s.HeatLoss()
	}
	return sum
}

func (r Room) VentilationLoss() float64 {
	if r.Ventilation == nil {
		return 0
	}
	return r.Ventilation.HeatLoss()
}

func (r Room) TotalHeatLoad() float64 {
	return r.TransmissionLoss() + r.VentilationLoss()
}

// HasFlowRate reports whether a supply/return delta is defined.
func (r Room) HasFlowRate() bool {
	return r.SupplyReturnDeltaK != nil
}

// FlowRate returns the required heating water flow in l/h.
func (r Room) FlowRate() (float64, error) {
	if r.SupplyReturnDeltaK == nil {
		return 0, ErrNoSupplyReturnDelta
	}
	delta := *r.SupplyReturnDeltaK
	if delta < 0 {
		return 0, ErrNegativeSupplyReturnDelta
	}
	if delta == 0 {
		return 0, ErrZeroSupplyReturnDelta
	}
	return r.TotalHeatLoad() / (WaterHeatCapacity * delta), nil
}

// FlowRatePerMinute returns the required heating water flow in l/min.
func (r Room) FlowRatePerMinute() (float64, error) {
	lh, err := r.FlowRate()
	if err != nil {
		return 0, err
	}
	return lh / 60, nil
}

func (r Room) clone() Room {
	c := r
	c.Surfaces = append([]Surface(nil), r.Surfaces...)
	if r.Ventilation != nil {
		v := *r.Ventilation
		c.Ventilation = &v
	}
	if r.SupplyReturnDeltaK != nil {
		d := *r.SupplyReturnDeltaK
		c.SupplyReturnDeltaK = &d
	}
	return c
}
