package builder

import (
	"fmt"

	"github.com/Agrid-Dev/heatload/internal/heatload"
)

// BuildingConfig mirrors the building configuration document. Pointer fields
// distinguish "missing" from zero.
type BuildingConfig struct {
	Rooms []RoomConfig `koanf:"rooms"`
}

type RoomConfig struct {
	Name               string             `koanf:"name"`
	SetpointC          *float64           `koanf:"setpoint_temp_c"`
	SupplyReturnDeltaK *float64           `koanf:"delta_t_supply_return_k"`
	Surfaces           []SurfaceConfig    `koanf:"surfaces"`
	Ventilation        *VentilationConfig `koanf:"ventilation"`
}

type SurfaceConfig struct {
	Name       string   `koanf:"name"`
	AreaM2     *float64 `koanf:"area_m2"`
	Side1M     *float64 `koanf:"length_side_1_m"`
	Side2M     *float64 `koanf:"length_side_2_m"`
	UValue     *float64 `koanf:"u_w_m2k"`
	OtherSideC *float64 `koanf:"temp_other_side_c"`
}

type VentilationConfig struct {
	Mode *string `koanf:"mode"` // "dimensions" | "area_height" | "volume" | "none"

	LengthM     *float64 `koanf:"length_m"`
	WidthM      *float64 `koanf:"width_m"`
	HeightM     *float64 `koanf:"height_m"`
	AreaM2      *float64 `koanf:"area_m2"`
	RoomHeightM *float64 `koanf:"room_height_m"`
	VolumeM3    *float64 `koanf:"volume_m3"`

	AirChangesPerHour *float64 `koanf:"air_change_per_hour"`
	SupplyTempC       *float64 `koanf:"supply_temp_c"`
}

const defaultVolumeMode = "volume"

// Building turns the configuration into a validated building.
func (c BuildingConfig) Building() (*heatload.Building, error) {
	rooms := make([]heatload.Room, 0, len(c.Rooms))
	for i, rc := range c.Rooms {
		r, err := rc.room(fmt.Sprintf("rooms[%d]", i), i)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return heatload.NewBuilding(rooms...)
}

func (rc RoomConfig) room(path string, index int) (heatload.Room, error) {
	name := rc.Name
	if name == "" {
		name = fmt.Sprintf("Room %d", index+1)
	}
	setpoint, err := required(rc.SetpointC, path+".setpoint_temp_c")
	if err != nil {
		return heatload.Room{}, err
	}
	if rc.SupplyReturnDeltaK != nil && *rc.SupplyReturnDeltaK < 0 {
		return heatload.Room{}, fieldErr(path+".delta_t_supply_return_k", heatload.ErrNegativeSupplyReturnDelta)
	}

	room := heatload.Room{
		Name:               name,
		SetpointC:          setpoint,
		SupplyReturnDeltaK: rc.SupplyReturnDeltaK,
		Surfaces:           make([]heatload.Surface, 0, len(rc.Surfaces)),
	}
	for j, sc := range rc.Surfaces {
		s, err := sc.surface(fmt.Sprintf("%s.surfaces[%d]", path, j), j, setpoint)
		if err != nil {
			return heatload.Room{}, err
		}
		room.Surfaces = append(room.Surfaces, s)
	}

	if rc.Ventilation != nil {
		v, err := rc.Ventilation.ventilation(path+".ventilation", setpoint)
		if err != nil {
			return heatload.Room{}, err
		}
		room.Ventilation = v
	}
	return room, nil
}

func (sc SurfaceConfig) surface(path string, index int, setpointC float64) (heatload.Surface, error) {
	name := sc.Name
	if name == "" {
		name = fmt.Sprintf("Surface %d", index+1)
	}
	u, err := required(sc.UValue, path+".u_w_m2k")
	if err != nil {
		return heatload.Surface{}, err
	}
	other, err := required(sc.OtherSideC, path+".temp_other_side_c")
	if err != nil {
		return heatload.Surface{}, err
	}

	var s heatload.Surface
	switch {
	case sc.AreaM2 != nil:
		s, err = heatload.NewSurface(name, *sc.AreaM2, u, setpointC, other)
	case sc.Side1M != nil || sc.Side2M != nil:
		side1, err1 := required(sc.Side1M, path+".length_side_1_m")
		if err1 != nil {
			return heatload.Surface{}, err1
		}
		side2, err2 := required(sc.Side2M, path+".length_side_2_m")
		if err2 != nil {
			return heatload.Surface{}, err2
		}
		s, err = heatload.NewSurfaceFromSides(name, side1, side2, u, setpointC, other)
	default:
		return heatload.Surface{}, fieldErr(path+".area_m2", ErrMissingField)
	}
	if err != nil {
		return heatload.Surface{}, fieldErr(path, err)
	}
	return s, nil
}

func (vc VentilationConfig) ventilation(path string, roomTempC float64) (*heatload.Ventilation, error) {
	modeStr := defaultVolumeMode
	if vc.Mode != nil {
		modeStr = *vc.Mode
	}
	mode, err := heatload.ParseVolumeMode(modeStr)
	if err != nil {
		return nil, fieldErr(path+".mode", err)
	}
	if mode == heatload.VolumeModeNone {
		if vc.definesVolume() {
			return nil, fieldErr(path+".mode", heatload.ErrVolumeModeNone)
		}
		return nil, nil
	}

	volume, err := vc.volume(path, mode)
	if err != nil {
		return nil, err
	}
	ach, err := required(vc.AirChangesPerHour, path+".air_change_per_hour")
	if err != nil {
		return nil, err
	}
	supply, err := required(vc.SupplyTempC, path+".supply_temp_c")
	if err != nil {
		return nil, err
	}

	v := &heatload.Ventilation{
		VolumeM3:          volume,
		AirChangesPerHour: ach,
		RoomTempC:         roomTempC,
		SupplyTempC:       supply,
	}
	if err := v.Validate(); err != nil {
		return nil, fieldErr(path, err)
	}
	return v, nil
}

func (vc VentilationConfig) definesVolume() bool {
	return vc.LengthM != nil || vc.WidthM != nil || vc.HeightM != nil ||
		vc.AreaM2 != nil || vc.RoomHeightM != nil || vc.VolumeM3 != nil
}

func (vc VentilationConfig) volume(path string, mode heatload.VolumeMode) (float64, error) {
	in := heatload.VolumeInput{Mode: mode}
	var err error
	switch mode {
	case heatload.VolumeModeDimensions:
		if in.LengthM, err = required(vc.LengthM, path+".length_m"); err != nil {
			return 0, err
		}
		if in.WidthM, err = required(vc.WidthM, path+".width_m"); err != nil {
			return 0, err
		}
		if in.HeightM, err = required(vc.HeightM, path+".height_m"); err != nil {
			return 0, err
		}
	case heatload.VolumeModeAreaHeight:
		if in.AreaM2, err = required(vc.AreaM2, path+".area_m2"); err != nil {
			return 0, err
		}
		if in.HeightM, err = required(vc.RoomHeightM, path+".room_height_m"); err != nil {
			return 0, err
		}
	case heatload.VolumeModeDirect:
		if in.VolumeM3, err = required(vc.VolumeM3, path+".volume_m3"); err != nil {
			return 0, err
		}
	}
	v, err := in.Volume()
	if err != nil {
		return 0, fieldErr(path, err)
	}
	return v, nil
}

func required(v *float64, field string) (float64, error) {
	if v == nil {
		return 0, fieldErr(field, ErrMissingField)
	}
	return *v, nil
}
