package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/errors"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/metrics"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// DefaultPickers are registered by SeedDefaultPickers on an empty store
var DefaultPickers = []CreatePickerCommand{
	{Name: "John Smith", Target: 100},
	{Name: "Sarah Johnson", Target: 120},
	{Name: "Mike Wilson", Target: 110},
}

// DashboardService handles picker and dashboard use cases
type DashboardService struct {
	repo      domain.PickerRepository
	snapshots domain.SnapshotRepository
	logger    *logging.Logger
	metrics   *metrics.Metrics
	schedule  analytics.Schedule
	now       func() time.Time
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithClock replaces the wall clock used when a query carries no instant
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) { s.now = now }
}

// WithSchedule sets the shift schedule
func WithSchedule(sched analytics.Schedule) Option {
	return func(s *DashboardService) { s.schedule = sched }
}

// WithMetrics enables business metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *DashboardService) { s.metrics = m }
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	repo domain.PickerRepository,
	snapshots domain.SnapshotRepository,
	logger *logging.Logger,
	opts ...Option,
) *DashboardService {
	s := &DashboardService{
		repo:      repo,
		snapshots: snapshots,
		logger:    logger.WithComponent("dashboard-service"),
		schedule:  analytics.DefaultSchedule(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule returns the shift schedule the service evaluates against
func (s *DashboardService) Schedule() analytics.Schedule {
	return s.schedule
}

// CreatePicker registers a new picker
func (s *DashboardService) CreatePicker(ctx context.Context, cmd CreatePickerCommand) (*PickerDTO, error) {
	pickerID := strings.TrimSpace(cmd.PickerID)
	if pickerID == "" {
		pickerID = uuid.NewString()
	}

	existing, err := s.repo.FindByID(ctx, pickerID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get picker", "pickerId", pickerID)
		return nil, fmt.Errorf("failed to get picker: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("picker already exists").WithDetail("pickerId", pickerID)
	}

	picker, err := domain.NewPicker(pickerID, cmd.Name, cmd.Target)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.repo.Save(ctx, picker); err != nil {
		s.logger.WithError(err).Error("Failed to save picker", "pickerId", pickerID)
		return nil, fmt.Errorf("failed to save picker: %w", err)
	}

	s.logger.Audit(ctx, "picker.create", "picker", pickerID, cmd.Actor)
	s.logger.Info("Created picker", "pickerId", pickerID, "target", picker.Target)
	return ToPickerDTO(picker), nil
}

// GetPicker retrieves a picker by ID
func (s *DashboardService) GetPicker(ctx context.Context, query GetPickerQuery) (*PickerDTO, error) {
	picker, err := s.findPicker(ctx, query.PickerID)
	if err != nil {
		return nil, err
	}
	return ToPickerDTO(picker), nil
}

// ListPickers returns a page of pickers, filtered by status when one is given
func (s *DashboardService) ListPickers(ctx context.Context, query ListPickersQuery) (*PickerListDTO, error) {
	limit, offset := query.Limit, query.Offset
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if query.Status != "" {
		status, err := domain.ParsePickerStatus(query.Status)
		if err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		pickers, err := s.repo.FindByStatus(ctx, status)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list pickers by status", "status", status)
			return nil, fmt.Errorf("failed to list pickers: %w", err)
		}
		return &PickerListDTO{
			Pickers: ToPickerDTOs(page(pickers, limit, offset)),
			Total:   int64(len(pickers)),
			Limit:   limit,
			Offset:  offset,
		}, nil
	}

	pickers, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list pickers")
		return nil, fmt.Errorf("failed to list pickers: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count pickers")
		return nil, fmt.Errorf("failed to count pickers: %w", err)
	}

	return &PickerListDTO{
		Pickers: ToPickerDTOs(pickers),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// UpdatePicker applies the set fields of the command in order: name, target, status
func (s *DashboardService) UpdatePicker(ctx context.Context, cmd UpdatePickerCommand) (*PickerDTO, error) {
	picker, err := s.findPicker(ctx, cmd.PickerID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if err := picker.Rename(*cmd.Name); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
	}
	if cmd.Target != nil {
		if err := picker.UpdateTarget(*cmd.Target); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
	}
	if cmd.Status != nil {
		status, err := domain.ParsePickerStatus(*cmd.Status)
		if err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		if err := picker.ChangeStatus(status); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
	}

	if err := s.repo.Save(ctx, picker); err != nil {
		s.logger.WithError(err).Error("Failed to save picker", "pickerId", cmd.PickerID)
		return nil, fmt.Errorf("failed to save picker: %w", err)
	}

	s.logger.Audit(ctx, "picker.update", "picker", picker.PickerID, cmd.Actor)
	return ToPickerDTO(picker), nil
}

// DeletePicker removes a picker
func (s *DashboardService) DeletePicker(ctx context.Context, cmd DeletePickerCommand) error {
	if _, err := s.findPicker(ctx, cmd.PickerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, cmd.PickerID); err != nil {
		s.logger.WithError(err).Error("Failed to delete picker", "pickerId", cmd.PickerID)
		return fmt.Errorf("failed to delete picker: %w", err)
	}

	s.logger.Audit(ctx, "picker.delete", "picker", cmd.PickerID, cmd.Actor)
	return nil
}

// RecordPerformance records the lines a picker completed in one shift hour.
// Recording the same hour again replaces the earlier value.
func (s *DashboardService) RecordPerformance(ctx context.Context, cmd RecordPerformanceCommand) (*PickerDTO, error) {
	picker, err := s.findPicker(ctx, cmd.PickerID)
	if err != nil {
		return nil, err
	}

	if err := picker.RecordHourlyLines(cmd.Hour, cmd.Lines); err != nil {
		return nil, errors.ErrValidation(err.Error()).WithDetail("pickerId", cmd.PickerID)
	}

	// Events are saved to outbox by repository in transaction
	if err := s.repo.Save(ctx, picker); err != nil {
		s.logger.WithError(err).Error("Failed to save picker", "pickerId", cmd.PickerID)
		return nil, fmt.Errorf("failed to save picker: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLinesRecorded(cmd.Hour)
	}

	s.logger.Info("Recorded performance",
		"pickerId", cmd.PickerID,
		"hour", cmd.Hour,
		"lines", cmd.Lines,
		"performance", picker.Performance,
	)
	return ToPickerDTO(picker), nil
}

// SeedDefaultPickers registers the default roster when no picker exists yet.
// It returns how many pickers were created.
func (s *DashboardService) SeedDefaultPickers(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pickers: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, cmd := range DefaultPickers {
		cmd.Actor = "seed"
		if _, err := s.CreatePicker(ctx, cmd); err != nil {
			return created, fmt.Errorf("failed to seed picker %q: %w", cmd.Name, err)
		}
		created++
	}

	s.logger.Info("Seeded default pickers", "count", created)
	return created, nil
}

func (s *DashboardService) findPicker(ctx context.Context, pickerID string) (*domain.Picker, error) {
	picker, err := s.repo.FindByID(ctx, pickerID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get picker", "pickerId", pickerID)
		return nil, fmt.Errorf("failed to get picker: %w", err)
	}
	if picker == nil {
		return nil, errors.ErrNotFoundWithID("picker", pickerID)
	}
	return picker, nil
}

func page(pickers []*domain.Picker, limit, offset int) []*domain.Picker {
	if offset >= len(pickers) {
		return nil
	}
	end := min(offset+limit, len(pickers))
	return pickers[offset:end]
}
