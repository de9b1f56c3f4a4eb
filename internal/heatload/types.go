package heatload

import "fmt"

// VolumeMode selects how a room's air volume is derived.
type VolumeMode int

const (
	VolumeModeUnknown VolumeMode = iota
	VolumeModeDimensions
	VolumeModeAreaHeight
	VolumeModeDirect
	VolumeModeNone
)

func (m VolumeMode) Valid() bool {
	return m == VolumeModeDimensions || m == VolumeModeAreaHeight || m == VolumeModeDirect || m == VolumeModeNone
}

func (m VolumeMode) String() string {
	switch m {
	case VolumeModeDimensions:
		return "dimensions"
	case VolumeModeAreaHeight:
		return "area_height"
	case VolumeModeDirect:
		return "volume"
	case VolumeModeNone:
		return "none"
	default:
		return "unknown"
	}
}

func ParseVolumeMode(s string) (VolumeMode, error) {
	switch s {
	case "dimensions":
		return VolumeModeDimensions, nil
	case "area_height":
		return VolumeModeAreaHeight, nil
	case "volume":
		return VolumeModeDirect, nil
	case "none":
		return VolumeModeNone, nil
	default:
		return VolumeModeUnknown, fmt.Errorf("%w: %q", ErrUnknownVolumeMode, s)
	}
}
