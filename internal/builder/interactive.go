package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/heatload"
)

// InteractiveSource collects a building through terminal prompts.
type InteractiveSource struct {
	Prompter *Prompter
}

func (s InteractiveSource) Build(ctx context.Context) (*heatload.Building, error) {
	p := s.Prompter
	count, err := p.Count("Number of rooms to calculate: ")
	if err != nil {
		return nil, err
	}
	rooms := make([]heatload.Room, 0, count)
	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := s.room(i)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return heatload.NewBuilding(rooms...)
}

func (s InteractiveSource) room(index int) (heatload.Room, error) {
	p := s.Prompter
	p.Printf("\nEntering data for room %d\n", index+1)

	name, err := p.Line("Room name: ")
	if err != nil {
		return heatload.Room{}, err
	}
	if name == "" {
		name = fmt.Sprintf("Room %d", index+1)
	}
	setpoint, err := p.Float("Setpoint temperature of this room (°C): ")
	if err != nil {
		return heatload.Room{}, err
	}
	delta, err := p.OptionalFloat("Temperature delta between supply and return flow (K, empty to skip): ")
	if err != nil {
		return heatload.Room{}, err
	}

	n, err := p.Count("Number of heat-transferring surfaces (walls, windows, floors, ceilings) in this room: ")
	if err != nil {
		return heatload.Room{}, err
	}
	surfaces := make([]heatload.Surface, 0, n)
	for j := range n {
		sf, err := s.surface(j, setpoint)
		if err != nil {
			return heatload.Room{}, err
		}
		surfaces = append(surfaces, sf)
	}

	room := heatload.Room{
		Name:               name,
		SetpointC:          setpoint,
		SupplyReturnDeltaK: delta,
		Surfaces:           surfaces,
	}

	vent, err := p.YesNo("\nConsider ventilation / air exchange losses for this room?")
	if err != nil {
		return heatload.Room{}, err
	}
	if vent {
		v, err := s.ventilation(setpoint)
		if err != nil {
			return heatload.Room{}, err
		}
		room.Ventilation = v
	}
	return room, nil
}

func (s InteractiveSource) surface(index int, setpointC float64) (heatload.Surface, error) {
	p := s.Prompter
	p.Printf("\n  Surface %d\n", index+1)

	name, err := p.Line("    Name (e.g. 'exterior wall north', 'window west'): ")
	if err != nil {
		return heatload.Surface{}, err
	}
	if name == "" {
		name = fmt.Sprintf("Surface %d", index+1)
	}
	side1, err := p.NonNegativeFloat("    Side length 1 (m): ")
	if err != nil {
		return heatload.Surface{}, err
	}
	side2, err := p.NonNegativeFloat("    Side length 2 (m): ")
	if err != nil {
		return heatload.Surface{}, err
	}
	u, err := p.NonNegativeFloat("    U-value (W/m²K): ")
	if err != nil {
		return heatload.Surface{}, err
	}
	other, err := p.Float("    Temperature on the other side of this surface (°C, e.g. outside or adjacent room): ")
	if err != nil {
		return heatload.Surface{}, err
	}
	return heatload.NewSurfaceFromSides(name, side1, side2, u, setpointC, other)
}

func (s InteractiveSource) ventilation(roomTempC float64) (*heatload.Ventilation, error) {
	p := s.Prompter
	volume, err := s.volume()
	if err != nil {
		return nil, err
	}
	ach, err := p.NonNegativeFloat("  Air changes per hour (1/h): ")
	if err != nil {
		return nil, err
	}
	supply, err := p.Float("  Temperature of supply / outside air for ventilation (°C): ")
	if err != nil {
		return nil, err
	}
	return &heatload.Ventilation{
		VolumeM3:          volume,
		AirChangesPerHour: ach,
		RoomTempC:         roomTempC,
		SupplyTempC:       supply,
	}, nil
}

// volume walks the yes/no chain: dimensions, then direct volume, then
// area x height as the fallback.
func (s InteractiveSource) volume() (float64, error) {
	p := s.Prompter
	var in heatload.VolumeInput
	var err error

	dims, err := p.YesNo("Is the room square/rectangular and you want to input its dimensions (LxWxH)?")
	if err != nil {
		return 0, err
	}
	if dims {
		in.Mode = heatload.VolumeModeDimensions
		p.Printf("Please enter the room dimensions:\n")
		if in.LengthM, err = p.NonNegativeFloat("  Room length (m): "); err != nil {
			return 0, err
		}
		if in.WidthM, err = p.NonNegativeFloat("  Room width (m): "); err != nil {
			return 0, err
		}
		if in.HeightM, err = p.NonNegativeFloat("  Room height (m): "); err != nil {
			return 0, err
		}
		return s.reportVolume(in)
	}

	direct, err := p.YesNo("Do you want to input the room volume directly?")
	if err != nil {
		return 0, err
	}
	if direct {
		in.Mode = heatload.VolumeModeDirect
		if in.VolumeM3, err = p.NonNegativeFloat("  Room air volume (m³): "); err != nil {
			return 0, err
		}
		return in.Volume()
	}

	in.Mode = heatload.VolumeModeAreaHeight
	p.Printf("Please enter the area and the height:\n")
	if in.AreaM2, err = p.NonNegativeFloat("  Room area  (m²): "); err != nil {
		return 0, err
	}
	if in.HeightM, err = p.NonNegativeFloat("  Room height (m): "); err != nil {
		return 0, err
	}
	return s.reportVolume(in)
}

func (s InteractiveSource) reportVolume(in heatload.VolumeInput) (float64, error) {
	v, err := in.Volume()
	if err != nil {
		return 0, err
	}
	s.Prompter.Printf("  Calculated room volume: %.1f m³\n", v)
	return v, nil
}

// PromptFileSource asks for a configuration path and offers another try when
// loading fails. Declining the retry returns the last error.
type PromptFileSource struct {
	Prompter    *Prompter
	DefaultPath string
	Logger      *zap.Logger
}

func (s PromptFileSource) Build(ctx context.Context) (*heatload.Building, error) {
	p := s.Prompter
	def := s.DefaultPath
	if def == "" {
		def = "rooms.json"
	}
	for {
		path, err := p.Line(fmt.Sprintf("Enter path to configuration file (JSON or YAML, default: %s): ", def))
		if err != nil {
			return nil, err
		}
		if path == "" {
			path = def
		}
		p.Printf("Loading building configuration from %q...\n", path)

		b, loadErr := FileSource{Path: path, Logger: s.Logger}.Build(ctx)
		if loadErr == nil {
			return b, nil
		}
		if errors.Is(loadErr, context.Canceled) || errors.Is(loadErr, context.DeadlineExceeded) {
			return nil, loadErr
		}
		if errors.Is(loadErr, fs.ErrNotExist) {
			p.Printf("File %q not found.\n", path)
		} else {
			p.Printf("Error while reading %q: %v\n", path, loadErr)
		}

		again, err := p.YesNo("Do you want to try a different file?")
		if err != nil {
			return nil, err
		}
		if !again {
			return nil, loadErr
		}
	}
}
