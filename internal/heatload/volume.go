package heatload

import "fmt"

// VolumeInput carries the raw values for one derivation mode. Only the
// fields of the selected mode are read.
type VolumeInput struct {
	Mode VolumeMode

	LengthM float64
	WidthM  float64
	HeightM float64

	AreaM2   float64
	VolumeM3 float64
}

// Volume derives the room air volume in m³.
func (in VolumeInput) Volume() (float64, error) {
	var parts []float64
	switch in.Mode {
	case VolumeModeDimensions:
		parts = []float64{in.LengthM, in.WidthM, in.HeightM}
	case VolumeModeAreaHeight:
		parts = []float64{in.AreaM2, in.HeightM}
	case VolumeModeDirect:
		parts = []float64{in.VolumeM3}
	case VolumeModeNone:
		return 0, ErrVolumeModeNone
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVolumeMode, in.Mode.String())
	}

	v := 1.0
	for _, p := range parts {
		if p < 0 {
			return 0, ErrNegativeVolume
		}
		v *= p
	}
	return v, nil
}

func VolumeFromDimensions(lengthM, widthM, heightM float64) (float64, error) {
	return VolumeInput{Mode: VolumeModeDimensions, LengthM: lengthM, WidthM: widthM, HeightM: heightM}.Volume()
}

func VolumeFromAreaHeight(areaM2, heightM float64) (float64, error) {
	return VolumeInput{Mode: VolumeModeAreaHeight, AreaM2: areaM2, HeightM: heightM}.Volume()
}
