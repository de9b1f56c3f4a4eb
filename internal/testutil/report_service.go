package testutil

import (
	"context"
	"sync"

	"github.com/Agrid-Dev/heatload/internal/heatload"
	"github.com/Agrid-Dev/heatload/internal/ports"
	"github.com/Agrid-Dev/heatload/internal/report"
)

// FakeReportService is a reusable fake implementing ports.ReportService.
// Put ONLY what multiple test packages need here.
type FakeReportService struct {
	mu sync.Mutex
	S  report.Summary

	RecalculateCalled int
	RecalculateErr    error
}

func ptr(v float64) *float64 { return &v }

// SampleSummary is a two-room house: "Living room" with a defined flow
// rate and "Bath" whose zero supply/return delta leaves it undefined.
func SampleSummary() report.Summary {
	wall, _ := heatload.NewSurface("exterior wall", 10, 0.3, 20, -5)
	living := heatload.Room{
		Name:               "Living room",
		SetpointC:          20,
		SupplyReturnDeltaK: ptr(10),
		Surfaces:           []heatload.Surface{wall},
		Ventilation:        &heatload.Ventilation{VolumeM3: 40, AirChangesPerHour: 1, RoomTempC: 20, SupplyTempC: -5},
	}
	bath := heatload.Room{
		Name:               "Bath",
		SetpointC:          24,
		SupplyReturnDeltaK: ptr(0),
		Surfaces:           []heatload.Surface{{Name: "window", AreaM2: 1, UValue: 1, DeltaTK: 30}},
	}
	b, _ := heatload.NewBuilding(living, bath)
	return report.Summarize("house-1", b)
}

func NewFakeReportService() *FakeReportService {
	return &FakeReportService{S: SampleSummary()}
}

func (f *FakeReportService) Summary() report.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.S
}

// Recalculate builds src for real so callers see genuine validation errors.
func (f *FakeReportService) Recalculate(ctx context.Context, src ports.BuildingSource) (report.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RecalculateCalled++
	if f.RecalculateErr != nil {
		return report.Summary{}, f.RecalculateErr
	}
	b, err := src.Build(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	f.S = report.Summarize(f.S.ProjectID, b)
	return f.S, nil
}

func (f *FakeReportService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RecalculateCalled
}
