package application

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/internal/report"
	"github.com/wms-platform/picker-performance-service/pkg/errors"
	"github.com/wms-platform/picker-performance-service/pkg/tracing"
)

const tracerName = "picker-performance-service/application"

// Dashboard computation triggers, used as metric labels
const (
	TriggerAPI       = "api"
	TriggerScheduled = "scheduled"
	TriggerSnapshot  = "snapshot"
	TriggerExport    = "export"
)

// GetDashboard computes every dashboard view from one picker snapshot
func (s *DashboardService) GetDashboard(ctx context.Context, query DashboardQuery) (*analytics.Dashboard, error) {
	return s.ComputeDashboard(ctx, query.At, TriggerAPI)
}

// ComputeDashboard evaluates the dashboard at the given instant, or now when at is zero.
// It never returns a partial dashboard.
func (s *DashboardService) ComputeDashboard(ctx context.Context, at time.Time, trigger string) (*analytics.Dashboard, error) {
	d, _, err := s.computeDashboard(ctx, at, trigger)
	return d, err
}

func (s *DashboardService) computeDashboard(ctx context.Context, at time.Time, trigger string) (d *analytics.Dashboard, pickers []*domain.Picker, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "dashboard.compute", attribute.String("trigger", trigger))
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordDashboardComputation(trigger, err == nil, time.Since(start))
		}
		tracing.EndSpan(span, err)
	}()

	pickers, err = s.loadPickers(ctx)
	if err != nil {
		return nil, nil, err
	}

	d, err = analytics.BuildDashboard(pickers, s.instant(at), s.schedule)
	if err != nil {
		s.logger.WithError(err).Error("Failed to compute dashboard", "trigger", trigger, "pickers", len(pickers))
		return nil, nil, engineError(err)
	}

	span.SetAttributes(attribute.Int("pickers", len(pickers)))
	return d, pickers, nil
}

// GetMetrics computes the aggregate performance metrics
func (s *DashboardService) GetMetrics(ctx context.Context) (*analytics.PerformanceMetrics, error) {
	pickers, err := s.loadPickers(ctx)
	if err != nil {
		return nil, err
	}
	m, err := analytics.ComputeMetrics(pickers)
	if err != nil {
		return nil, engineError(err)
	}
	return m, nil
}

// GetShiftProgress reports shift progress at the query instant
func (s *DashboardService) GetShiftProgress(_ context.Context, query DashboardQuery) analytics.ShiftProgress {
	return s.schedule.Progress(s.instant(query.At))
}

// GetProjections projects end-of-shift totals for each picker and the team
func (s *DashboardService) GetProjections(ctx context.Context, query DashboardQuery) (*ProjectionsDTO, error) {
	pickers, err := s.loadPickers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.instant(query.At)
	projections, err := analytics.ProjectPickers(pickers, now, s.schedule)
	if err != nil {
		return nil, engineError(err)
	}
	team, err := analytics.ProjectTeam(pickers, now, s.schedule)
	if err != nil {
		return nil, engineError(err)
	}

	return &ProjectionsDTO{
		EvaluatedAt: now,
		Team:        team,
		Pickers:     projections,
		GapAnalysis: analytics.GapAnalysis(projections),
	}, nil
}

// GetConsistency scores team consistency for the requested hour, or the current shift hour
func (s *DashboardService) GetConsistency(ctx context.Context, query ConsistencyQuery) (*analytics.ConsistencyReport, error) {
	hour := s.schedule.ShiftHour(s.instant(query.At))
	if query.Hour != nil {
		hour = *query.Hour
		if !domain.ValidHour(hour) {
			return nil, errors.ErrValidation(domain.ErrInvalidHour.Error())
		}
	}

	pickers, err := s.loadPickers(ctx)
	if err != nil {
		return nil, err
	}
	r, err := analytics.AnalyzeConsistency(pickers, hour)
	if err != nil {
		return nil, engineError(err)
	}
	return r, nil
}

// GetHourAnalysis analyzes one shift hour
func (s *DashboardService) GetHourAnalysis(ctx context.Context, query HourAnalysisQuery) (*analytics.HourAnalysis, error) {
	if !domain.ValidHour(query.Hour) {
		return nil, errors.ErrValidation(domain.ErrInvalidHour.Error())
	}

	pickers, err := s.loadPickers(ctx)
	if err != nil {
		return nil, err
	}
	a, err := analytics.AnalyzeHour(pickers, query.Hour)
	if err != nil {
		return nil, engineError(err)
	}
	return a, nil
}

// GetLaborEfficiency computes the labor efficiency ratio for the team or one picker
func (s *DashboardService) GetLaborEfficiency(ctx context.Context, query LaborEfficiencyQuery) (*LaborEfficiencyDTO, error) {
	pickers, err := s.loadPickers(ctx)
	if err != nil {
		return nil, err
	}

	series, err := analytics.BuildCumulativeSeries(pickers, query.PickerID)
	if err != nil {
		return nil, engineError(err)
	}

	return &LaborEfficiencyDTO{
		PickerID:        query.PickerID,
		Series:          series,
		EfficiencyRatio: analytics.LaborEfficiencyRatio(series),
	}, nil
}

// GetLeaderboard ranks pickers by performance
func (s *DashboardService) GetLeaderboard(ctx context.Context) ([]analytics.LeaderboardEntry, error) {
	pickers, err := s.loadPickers(ctx)
	if err != nil {
		return nil, err
	}
	board, err := analytics.Leaderboard(pickers)
	if err != nil {
		return nil, engineError(err)
	}
	return board, nil
}

// ExportShiftReport renders the dashboard at the query instant as an XLSX workbook
func (s *DashboardService) ExportShiftReport(ctx context.Context, query DashboardQuery) (*ShiftReport, error) {
	d, pickers, err := s.computeDashboard(ctx, query.At, TriggerExport)
	if err != nil {
		return nil, err
	}

	data, err := report.RenderShiftReport(d, pickers)
	if err != nil {
		s.logger.WithError(err).Error("Failed to render shift report")
		return nil, fmt.Errorf("failed to render shift report: %w", err)
	}

	return &ShiftReport{
		FileName:    report.FileName(d),
		ContentType: report.ContentType,
		Data:        data,
	}, nil
}

func (s *DashboardService) loadPickers(ctx context.Context) ([]*domain.Picker, error) {
	pickers, err := s.repo.FindAll(ctx, 0, 0)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load pickers")
		return nil, fmt.Errorf("failed to load pickers: %w", err)
	}
	return pickers, nil
}

func (s *DashboardService) instant(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}

// engineError maps analytics failures onto application errors
func engineError(err error) error {
	switch {
	case goerrors.Is(err, analytics.ErrPickerNotFound):
		return errors.ErrNotFound("picker").Wrap(err)
	case goerrors.Is(err, domain.ErrInvalidHour):
		return errors.ErrValidation(domain.ErrInvalidHour.Error()).Wrap(err)
	case goerrors.Is(err, analytics.ErrInvalidInput):
		return errors.ErrUnprocessable(err.Error()).Wrap(err)
	default:
		return fmt.Errorf("failed to compute analytics: %w", err)
	}
}
