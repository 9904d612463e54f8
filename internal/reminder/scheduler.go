// Package reminder periodically announces upcoming and overdue maintenance
// windows through an alert backend.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matijazezelj/assetutil/internal/alert"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// Schedules is the part of the maintenance service the scheduler reads.
type Schedules interface {
	GetAllSchedules(ctx context.Context) ([]models.MaintenanceSchedule, error)
	UpcomingSchedules(ctx context.Context, within time.Duration) ([]models.MaintenanceSchedule, error)
}

// Assets resolves the asset a window belongs to.
type Assets interface {
	GetAssetByID(ctx context.Context, id string) (models.Asset, error)
}

// Scheduler checks maintenance windows on an interval and sends one alert
// per window and event type.
type Scheduler struct {
	schedules Schedules
	assets    Assets
	alerter   alert.Alerter
	interval  time.Duration
	horizon   time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu   sync.Mutex
	sent map[string]bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a scheduler. Both durations are parsed with
// time.ParseDuration (e.g. "15m", "24h").
func New(schedules Schedules, assets Assets, alerter alert.Alerter, interval, horizon string, logger *slog.Logger) (*Scheduler, error) {
	iv, err := time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder interval %q: %w", interval, err)
	}
	if iv < time.Minute {
		return nil, fmt.Errorf("reminder interval must be at least 1m, got %s", iv)
	}
	hz, err := time.ParseDuration(horizon)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder horizon %q: %w", horizon, err)
	}
	if hz <= 0 {
		return nil, fmt.Errorf("reminder horizon must be positive, got %s", hz)
	}
	return &Scheduler{
		schedules: schedules,
		assets:    assets,
		alerter:   alerter,
		interval:  iv,
		horizon:   hz,
		now:       time.Now,
		logger:    logger,
		sent:      make(map[string]bool),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins the periodic loop. Call Stop() to terminate.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("maintenance reminder scheduler started",
			"interval", s.interval.String(), "horizon", s.horizon.String())

		for {
			select {
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					s.logger.Error("maintenance reminder check failed", "error", err)
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the scheduler and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// RunOnce performs a single check and returns the number of alerts sent.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	upcoming, err := s.schedules.UpcomingSchedules(ctx, s.horizon)
	if err != nil {
		return 0, fmt.Errorf("listing upcoming windows: %w", err)
	}
	all, err := s.schedules.GetAllSchedules(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing windows: %w", err)
	}

	now := s.now().UTC()
	sent := 0
	for _, m := range upcoming {
		if s.notify(ctx, alert.EventMaintenanceUpcoming, m, now) {
			sent++
		}
	}
	for _, m := range all {
		if m.Status == models.MaintenanceScheduled && m.EndDate.Before(now) {
			if s.notify(ctx, alert.EventMaintenanceOverdue, m, now) {
				sent++
			}
		}
	}
	return sent, nil
}

func (s *Scheduler) notify(ctx context.Context, eventType string, m models.MaintenanceSchedule, now time.Time) bool {
	key := eventType + "/" + m.ID
	s.mu.Lock()
	done := s.sent[key]
	s.mu.Unlock()
	if done || s.alerter == nil {
		return false
	}

	event := buildEvent(eventType, m, now)
	if a, err := s.assets.GetAssetByID(ctx, m.AssetID); err == nil {
		event.Asset.Name = a.Name
		event.Asset.Type = a.Type
		event.Asset.Location = a.Location
	}

	if err := s.alerter.Send(ctx, event); err != nil {
		s.logger.Warn("failed to send maintenance alert", "schedule_id", m.ID, "error", err)
		return false
	}

	s.mu.Lock()
	s.sent[key] = true
	s.mu.Unlock()
	return true
}

func buildEvent(eventType string, m models.MaintenanceSchedule, now time.Time) alert.Event {
	var msg string
	severity := severityFor(m.Priority)
	if eventType == alert.EventMaintenanceOverdue {
		msg = fmt.Sprintf("Maintenance %q ended %s ago without being started", m.Title, now.Sub(m.EndDate).Round(time.Minute))
		if severity == "info" {
			severity = "warning"
		}
	} else {
		msg = fmt.Sprintf("Maintenance %q starts in %s", m.Title, m.StartDate.Sub(now).Round(time.Minute))
	}

	return alert.Event{
		Source:    "assetutil",
		EventType: eventType,
		Severity:  severity,
		Asset:     alert.Asset{ID: m.AssetID},
		Maintenance: &alert.Maintenance{
			ID:         m.ID,
			Title:      m.Title,
			Type:       string(m.Type),
			Priority:   string(m.Priority),
			AssignedTo: m.AssignedTo,
			StartDate:  m.StartDate,
			EndDate:    m.EndDate,
		},
		Message:   msg,
		Timestamp: now,
	}
}

func severityFor(p models.Level) string {
	switch p {
	case models.LevelCritical:
		return "critical"
	case models.LevelHigh:
		return "warning"
	default:
		return "info"
	}
}
