package heatload

import "errors"

var (
	ErrNegativeArea              = errors.New("area must not be negative")
	ErrNegativeUValue            = errors.New("u-value must not be negative")
	ErrNegativeVolume            = errors.New("volume must not be negative")
	ErrNegativeAirChanges        = errors.New("air changes per hour must not be negative")
	ErrNegativeSupplyReturnDelta = errors.New("supply/return delta must not be negative")
	ErrUnknownVolumeMode         = errors.New("unknown ventilation mode")
	ErrVolumeModeNone            = errors.New("ventilation mode 'none' does not define a volume")
	ErrNoSupplyReturnDelta       = errors.New("no supply/return delta defined")
	// ErrZeroSupplyReturnDelta means the required flow would be infinite.
	ErrZeroSupplyReturnDelta = errors.New("supply/return delta is zero")
	ErrRoomNotFound          = errors.New("room not found")
)
