package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/errors"
)

// SaveSnapshot computes the dashboard and stores it under the given name.
// Saving an existing name replaces it.
func (s *DashboardService) SaveSnapshot(ctx context.Context, cmd SaveSnapshotCommand) (*SnapshotDTO, error) {
	d, err := s.ComputeDashboard(ctx, cmd.At, TriggerSnapshot)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dashboard: %w", err)
	}

	snapshot, err := domain.NewDashboardSnapshot(cmd.Name, cmd.SavedBy, d.EvaluatedAt, d.PickerCount, payload)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		s.logger.WithError(err).Error("Failed to save snapshot", "name", snapshot.Name)
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Audit(ctx, "snapshot.save", "snapshot", snapshot.Name, cmd.SavedBy)
	return ToSnapshotDTO(snapshot, false), nil
}

// GetSnapshot loads a snapshot together with its dashboard
func (s *DashboardService) GetSnapshot(ctx context.Context, query GetSnapshotQuery) (*SnapshotDTO, error) {
	snapshot, err := s.findSnapshot(ctx, query.Name)
	if err != nil {
		return nil, err
	}
	return ToSnapshotDTO(snapshot, true), nil
}

// ListSnapshots lists stored snapshots without their payloads
func (s *DashboardService) ListSnapshots(ctx context.Context) ([]SnapshotDTO, error) {
	summaries, err := s.snapshots.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list snapshots")
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return ToSnapshotSummaryDTOs(summaries), nil
}

// DeleteSnapshot removes a snapshot
func (s *DashboardService) DeleteSnapshot(ctx context.Context, cmd DeleteSnapshotCommand) error {
	if _, err := s.findSnapshot(ctx, cmd.Name); err != nil {
		return err
	}

	if err := s.snapshots.Delete(ctx, cmd.Name); err != nil {
		s.logger.WithError(err).Error("Failed to delete snapshot", "name", cmd.Name)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	s.logger.Audit(ctx, "snapshot.delete", "snapshot", cmd.Name, cmd.Actor)
	return nil
}

func (s *DashboardService) findSnapshot(ctx context.Context, name string) (*domain.DashboardSnapshot, error) {
	snapshot, err := s.snapshots.FindByName(ctx, name)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get snapshot", "name", name)
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, errors.ErrNotFoundWithID("snapshot", name)
	}
	return snapshot, nil
}
