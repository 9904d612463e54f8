package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// MaintenanceService manages maintenance schedules. Cancelled schedules are
// moved from the active collection to the archive; they no longer resolve by
// id but stay part of the asset's maintenance history.
type MaintenanceService struct {
	base
	schedules store.Collection[models.MaintenanceSchedule]
	archive   store.Collection[models.MaintenanceSchedule]
}

// NewMaintenanceService returns a maintenance service over the active and
// archived schedule collections.
func NewMaintenanceService(schedules, archive store.Collection[models.MaintenanceSchedule], opts ...Option) *MaintenanceService {
	return &MaintenanceService{base: newBase(opts), schedules: schedules, archive: archive}
}

// Legal status moves through UpdateMaintenanceSchedule. Keeping a status is
// always allowed; cancelling goes through CancelSchedule.
var transitions = map[models.MaintenanceStatus][]models.MaintenanceStatus{
	models.MaintenanceScheduled:  {models.MaintenanceInProgress},
	models.MaintenanceInProgress: {models.MaintenanceCompleted},
}

func canTransition(from, to models.MaintenanceStatus) bool {
	return from == to || slices.Contains(transitions[from], to)
}

func checkWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.Configuration("maintenance window needs both startDate and endDate")
	}
	if end.Before(start) {
		return apperr.Configuration("maintenance endDate %s is before startDate %s", ident.ISO(end), ident.ISO(start))
	}
	return nil
}

// ScheduleMaintenance creates a schedule in status scheduled.
func (s *MaintenanceService) ScheduleMaintenance(ctx context.Context, assetID string, start, end time.Time, d models.MaintenanceDetails) (m models.MaintenanceSchedule, err error) {
	defer s.observe("maintenance", "create", &err)

	if strings.TrimSpace(assetID) == "" {
		return models.MaintenanceSchedule{}, apperr.Configuration("Missing required field 'assetId' in maintenance schedule")
	}
	if err := d.Validate(); err != nil {
		return models.MaintenanceSchedule{}, err
	}
	if err := checkWindow(start, end); err != nil {
		return models.MaintenanceSchedule{}, err
	}

	now := s.now().UTC()
	m = models.MaintenanceSchedule{
		ID:          ident.NewID(ident.PrefixMaintenance),
		AssetID:     assetID,
		Title:       d.Title,
		Description: d.Description,
		StartDate:   start.UTC(),
		EndDate:     end.UTC(),
		Status:      models.MaintenanceScheduled,
		Type:        d.Type,
		AssignedTo:  d.AssignedTo,
		Priority:    d.Priority,
		Notes:       d.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.schedules.Put(ctx, m); err != nil {
		return models.MaintenanceSchedule{}, fmt.Errorf("storing maintenance schedule: %w", err)
	}

	s.logger.Info("maintenance scheduled", "schedule_id", m.ID, "asset_id", assetID, "start", ident.ISO(m.StartDate))
	s.record(ctx, assetID, models.ChangeMaintenance,
		[]models.FieldChange{{Field: "status", NewValue: m.Status}},
		fmt.Sprintf("maintenance %s scheduled: %s", m.ID, m.Title))
	return m, nil
}

// GetScheduleByID returns an active schedule or a MaintenanceScheduleNotFound
// error. Cancelled schedules are not found.
func (s *MaintenanceService) GetScheduleByID(ctx context.Context, id string) (models.MaintenanceSchedule, error) {
	m, err := s.schedules.Get(ctx, id)
	if err != nil {
		return models.MaintenanceSchedule{}, translate(err,
			func() error { return apperr.MaintenanceScheduleNotFound(id) }, "loading maintenance schedule")
	}
	return m, nil
}

// GetAllSchedules returns the active schedules in insertion order.
func (s *MaintenanceService) GetAllSchedules(ctx context.Context) ([]models.MaintenanceSchedule, error) {
	all, err := s.schedules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance schedules: %w", err)
	}
	return all, nil
}

// GetMaintenanceHistory returns every schedule of the asset, whatever its
// status and including cancelled ones, ordered by start date.
func (s *MaintenanceService) GetMaintenanceHistory(ctx context.Context, assetID string) ([]models.MaintenanceSchedule, error) {
	active, err := s.GetAllSchedules(ctx)
	if err != nil {
		return nil, err
	}
	archived, err := s.archive.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing archived schedules: %w", err)
	}

	out := []models.MaintenanceSchedule{}
	for _, m := range slices.Concat(active, archived) {
		if m.AssetID == assetID {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b models.MaintenanceSchedule) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return out, nil
}

// UpdateMaintenanceSchedule merges the set fields of p over the schedule.
// Status changes must follow the scheduled, in-progress, completed order.
func (s *MaintenanceService) UpdateMaintenanceSchedule(ctx context.Context, id string, p models.MaintenancePatch) (m models.MaintenanceSchedule, err error) {
	defer s.observe("maintenance", "update", &err)

	if err := p.Validate(); err != nil {
		return models.MaintenanceSchedule{}, err
	}
	prev, err := s.GetScheduleByID(ctx, id)
	if err != nil {
		return models.MaintenanceSchedule{}, err
	}

	m = prev
	var changes changeSet
	if p.Status != nil {
		if *p.Status == models.MaintenanceCancelled && prev.Status != models.MaintenanceCancelled {
			return models.MaintenanceSchedule{}, apperr.InvalidOperation("schedule %s: use cancel to cancel a maintenance schedule", id)
		}
		if !canTransition(prev.Status, *p.Status) {
			return models.MaintenanceSchedule{}, apperr.InvalidOperation("schedule %s: cannot move from %s to %s", id, prev.Status, *p.Status)
		}
		changes.add("status", m.Status, *p.Status)
		m.Status = *p.Status
	}
	if p.Title != nil {
		changes.add("title", m.Title, *p.Title)
		m.Title = *p.Title
	}
	if p.Description != nil {
		changes.add("description", m.Description, *p.Description)
		m.Description = *p.Description
	}
	if p.StartDate != nil {
		changes.add("startDate", ident.ISO(m.StartDate), ident.ISO(*p.StartDate))
		m.StartDate = p.StartDate.UTC()
	}
	if p.EndDate != nil {
		changes.add("endDate", ident.ISO(m.EndDate), ident.ISO(*p.EndDate))
		m.EndDate = p.EndDate.UTC()
	}
	if p.Type != nil {
		changes.add("type", m.Type, *p.Type)
		m.Type = *p.Type
	}
	if p.AssignedTo != nil {
		changes.add("assignedTo", m.AssignedTo, *p.AssignedTo)
		m.AssignedTo = *p.AssignedTo
	}
	if p.Priority != nil {
		changes.add("priority", m.Priority, *p.Priority)
		m.Priority = *p.Priority
	}
	if p.Notes != nil {
		changes.add("notes", m.Notes, *p.Notes)
		m.Notes = *p.Notes
	}
	if err := checkWindow(m.StartDate, m.EndDate); err != nil {
		return models.MaintenanceSchedule{}, err
	}
	m.ID = id
	m.UpdatedAt = s.stamp(prev.UpdatedAt)

	if err := s.schedules.Put(ctx, m); err != nil {
		return models.MaintenanceSchedule{}, fmt.Errorf("storing maintenance schedule: %w", err)
	}

	s.logger.Info("maintenance updated", "schedule_id", id, "status", m.Status)
	s.record(ctx, m.AssetID, models.ChangeMaintenance, changes, fmt.Sprintf("maintenance %s updated", id))
	return m, nil
}

// CancelSchedule marks the schedule cancelled and moves it to the archive.
// Completed schedules cannot be cancelled.
func (s *MaintenanceService) CancelSchedule(ctx context.Context, id string) (m models.MaintenanceSchedule, err error) {
	defer s.observe("maintenance", "cancel", &err)

	prev, err := s.GetScheduleByID(ctx, id)
	if err != nil {
		return models.MaintenanceSchedule{}, err
	}
	if prev.Status == models.MaintenanceCompleted {
		return models.MaintenanceSchedule{}, apperr.InvalidOperation("schedule %s is already completed", id)
	}

	m = prev
	m.Status = models.MaintenanceCancelled
	m.UpdatedAt = s.stamp(prev.UpdatedAt)

	if err := s.archive.Put(ctx, m); err != nil {
		return models.MaintenanceSchedule{}, fmt.Errorf("archiving maintenance schedule: %w", err)
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return models.MaintenanceSchedule{}, translate(err,
			func() error { return apperr.MaintenanceScheduleNotFound(id) }, "removing maintenance schedule")
	}

	s.logger.Info("maintenance cancelled", "schedule_id", id, "asset_id", m.AssetID)
	s.record(ctx, m.AssetID, models.ChangeMaintenance,
		[]models.FieldChange{{Field: "status", OldValue: prev.Status, NewValue: m.Status}},
		fmt.Sprintf("maintenance %s cancelled", id))
	return m, nil
}

// DeleteSchedule drops an active schedule without archiving it. Used when
// the owning asset is removed.
func (s *MaintenanceService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return translate(err, func() error { return apperr.MaintenanceScheduleNotFound(id) }, "deleting maintenance schedule")
	}
	return nil
}

// UpcomingSchedules returns scheduled windows starting between now and
// now+within, ordered by start date.
func (s *MaintenanceService) UpcomingSchedules(ctx context.Context, within time.Duration) ([]models.MaintenanceSchedule, error) {
	all, err := s.GetAllSchedules(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	horizon := now.Add(within)

	out := []models.MaintenanceSchedule{}
	for _, m := range all {
		if m.Status != models.MaintenanceScheduled {
			continue
		}
		if !m.StartDate.Before(now) && !m.StartDate.After(horizon) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b models.MaintenanceSchedule) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return out, nil
}
