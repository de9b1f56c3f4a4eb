package ports

import (
	"context"
	"errors"

	"github.com/Agrid-Dev/heatload/internal/heatload"
	"github.com/Agrid-Dev/heatload/internal/report"
)

// BuildingSource is one way of constructing a building (config file,
// terminal prompts, request body, ...).
type BuildingSource interface {
	Build(ctx context.Context) (*heatload.Building, error)
}

// ReportService is the port used by controllers (HTTP/MQTT/Modbus).
// Recalculate returns the summary of the building it installed; with
// ErrSaveFailed that summary is still current.
type ReportService interface {
	Summary() report.Summary
	Recalculate(ctx context.Context, src BuildingSource) (report.Summary, error)
}

// ErrSaveFailed marks a calculation that succeeded but could not be
// persisted.
var ErrSaveFailed = errors.New("save calculation")
