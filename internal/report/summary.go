package report

import "github.com/Agrid-Dev/heatload/internal/heatload"

// Summary carries every number the reports need, computed once.
type Summary struct {
	ProjectID       string        `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Rooms           []RoomSummary `json:"rooms" yaml:"rooms"`
	TotalHeatLoadW  float64       `json:"total_heat_load_w" yaml:"total_heat_load_w"`
	TotalHeatLoadKW float64       `json:"total_heat_load_kw" yaml:"total_heat_load_kw"`
}

type RoomSummary struct {
	Name               string   `json:"name" yaml:"name"`
	SetpointC          float64  `json:"setpoint_temp_c" yaml:"setpoint_temp_c"`
	SupplyReturnDeltaK *float64 `json:"delta_t_supply_return_k,omitempty" yaml:"delta_t_supply_return_k,omitempty"`

	TransmissionLossW float64 `json:"transmission_loss_w" yaml:"transmission_loss_w"`
	VentilationLossW  float64 `json:"ventilation_loss_w" yaml:"ventilation_loss_w"`
	TotalHeatLoadW    float64 `json:"total_heat_load_w" yaml:"total_heat_load_w"`
	TotalHeatLoadKW   float64 `json:"total_heat_load_kw" yaml:"total_heat_load_kw"`

	FlowRateLH    *float64 `json:"flow_rate_l_h,omitempty" yaml:"flow_rate_l_h,omitempty"`
	FlowRateLMin  *float64 `json:"flow_rate_l_min,omitempty" yaml:"flow_rate_l_min,omitempty"`
	FlowRateError string   `json:"flow_rate_error,omitempty" yaml:"flow_rate_error,omitempty"`

	Surfaces    []SurfaceSummary    `json:"surfaces" yaml:"surfaces"`
	Ventilation *VentilationSummary `json:"ventilation,omitempty" yaml:"ventilation,omitempty"`
}

type SurfaceSummary struct {
	Name      string  `json:"name" yaml:"name"`
	AreaM2    float64 `json:"area_m2" yaml:"area_m2"`
	UValue    float64 `json:"u_w_m2k" yaml:"u_w_m2k"`
	DeltaTK   float64 `json:"delta_t_k" yaml:"delta_t_k"`
	HeatLossW float64 `json:"heat_loss_w" yaml:"heat_loss_w"`
}

type VentilationSummary struct {
	VolumeM3          float64 `json:"volume_m3" yaml:"volume_m3"`
	AirChangesPerHour float64 `json:"air_change_per_hour" yaml:"air_change_per_hour"`
	SupplyTempC       float64 `json:"supply_temp_c" yaml:"supply_temp_c"`
	DeltaTK           float64 `json:"delta_t_k" yaml:"delta_t_k"`
	HeatLossW         float64 `json:"heat_loss_w" yaml:"heat_loss_w"`
}

func Summarize(projectID string, b *heatload.Building) Summary {
	s := Summary{ProjectID: projectID, Rooms: []RoomSummary{}}
	for _, r := range b.Rooms() {
		s.Rooms = append(s.Rooms, summarizeRoom(r))
	}
	s.TotalHeatLoadW = b.TotalHeatLoad()
	s.TotalHeatLoadKW = s.TotalHeatLoadW / 1000
	return s
}

func summarizeRoom(r heatload.Room) RoomSummary {
	rs := RoomSummary{
		Name:               r.Name,
		SetpointC:          r.SetpointC,
		SupplyReturnDeltaK: r.SupplyReturnDeltaK,
		TransmissionLossW:  r.TransmissionLoss(),
		VentilationLossW:   r.VentilationLoss(),
		TotalHeatLoadW:     r.TotalHeatLoad(),
		Surfaces:           make([]SurfaceSummary, 0, len(r.Surfaces)),
	}
	rs.TotalHeatLoadKW = rs.TotalHeatLoadW / 1000

	// a zero delta stays visible as an error instead of an infinite flow
	if r.HasFlowRate() {
		if lh, err := r.FlowRate(); err != nil {
			rs.FlowRateError = err.Error()
		} else {
			lmin := lh / 60
			rs.FlowRateLH = &lh
			rs.FlowRateLMin = &lmin
		}
	}

	for _, sf := range r.Surfaces {
		rs.Surfaces = append(rs.Surfaces, SurfaceSummary{
			Name:      sf.Name,
			AreaM2:    sf.AreaM2,
			UValue:    sf.UValue,
			DeltaTK:   sf.DeltaTK,
			HeatLossW: sf.HeatLoss(),
		})
	}
	if v := r.Ventilation; v != nil {
		rs.Ventilation = &VentilationSummary{
			VolumeM3:          v.VolumeM3,
			AirChangesPerHour: v.AirChangesPerHour,
			SupplyTempC:       v.SupplyTempC,
			DeltaTK:           v.DeltaT(),
			HeatLossW:         v.HeatLoss(),
		}
	}
	return rs
}

func (s Summary) Room(name string) (RoomSummary, bool) {
	for _, r := range s.Rooms {
		if r.Name == name {
			return r, true
		}
	}
	return RoomSummary{}, false
}
