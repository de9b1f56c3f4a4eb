package project

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/heatload"
	"github.com/Agrid-Dev/heatload/internal/metrics"
	"github.com/Agrid-Dev/heatload/internal/ports"
	"github.com/Agrid-Dev/heatload/internal/report"
)

// Recorder persists finished calculations.
type Recorder interface {
	Save(ctx context.Context, s report.Summary) error
}

// Project holds the current building of one heating project and its last
// computed summary. It is safe for concurrent use by the controllers.
type Project struct {
	ID string

	mu       sync.RWMutex
	building *heatload.Building
	summary  report.Summary

	logger   *zap.Logger
	recorder Recorder
}

type Option func(*Project)

func WithLogger(l *zap.Logger) Option {
	return func(p *Project) { p.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(p *Project) { p.recorder = r }
}

func New(id string, opts ...Option) *Project {
	p := &Project{
		ID:     id,
		logger: zap.NewNop(),
	}
	p.summary = report.Summarize(id, nil)
	for _, o := range opts {
		o(p)
	}
	return p
}

var _ ports.ReportService = (*Project)(nil)

func (p *Project) Summary() report.Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.summary
}

func (p *Project) Building() *heatload.Building {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.building
}

func (p *Project) Room(name string) (report.RoomSummary, error) {
	r, ok := p.Summary().Room(name)
	if !ok {
		return report.RoomSummary{}, fmt.Errorf("%w: %q", heatload.ErrRoomNotFound, name)
	}
	return r, nil
}

// Recalculate builds a new building from src, swaps it in and returns its
// summary. On a build error the previous building and summary are kept.
// The load gauges are updated under the same lock as the swap so they always
// show the current summary.
func (p *Project) Recalculate(ctx context.Context, src ports.BuildingSource) (report.Summary, error) {
	start := time.Now()
	b, err := src.Build(ctx)
	if err != nil {
		metrics.ObserveCalculation(metrics.ResultError, time.Since(start))
		p.logger.Warn("building rejected", zap.String("project", p.ID), zap.Error(err))
		return report.Summary{}, err
	}

	s := report.Summarize(p.ID, b)

	p.mu.Lock()
	p.building = b
	p.summary = s
	metrics.SetLoads(s)
	p.mu.Unlock()

	metrics.ObserveCalculation(metrics.ResultSuccess, time.Since(start))
	p.logger.Info("heating load calculated",
		zap.String("project", p.ID),
		zap.Int("rooms", b.Len()),
		zap.Float64("total_w", s.TotalHeatLoadW),
	)

	if p.recorder != nil {
		if err := p.recorder.Save(ctx, s); err != nil {
			return s, fmt.Errorf("%w: %w", ports.ErrSaveFailed, err)
		}
	}
	return s, nil
}
