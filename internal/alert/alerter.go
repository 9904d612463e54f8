// Package alert delivers maintenance reminder events to stdout, webhooks
// and Kafka.
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Event types.
const (
	EventMaintenanceUpcoming = "maintenance_upcoming"
	EventMaintenanceOverdue  = "maintenance_overdue"
)

// Event represents an alert event sent to alerting backends.
type Event struct {
	Source      string       `json:"source"`
	EventType   string       `json:"event_type"`
	Severity    string       `json:"severity"`
	Asset       Asset        `json:"asset"`
	Maintenance *Maintenance `json:"maintenance,omitempty"`
	Message     string       `json:"message"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Asset is the asset info embedded in an alert event.
type Asset struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Location string `json:"location,omitempty"`
}

// Maintenance describes the window an event is about.
type Maintenance struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Priority   string    `json:"priority"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// Alerter defines the interface for sending alert events.
type Alerter interface {
	// Name returns the alerter identifier.
	Name() string

	// Send dispatches an event to the alerting backend.
	Send(ctx context.Context, event Event) error
}

// Multi sends events to multiple alerters.
type Multi struct {
	alerters []Alerter
}

// NewMulti creates a multi-alerter that dispatches to all backends.
func NewMulti(alerters ...Alerter) *Multi {
	return &Multi{alerters: alerters}
}

// Name returns "multi".
func (m *Multi) Name() string {
	return "multi"
}

// Len returns the number of backends.
func (m *Multi) Len() int {
	return len(m.alerters)
}

// Send dispatches the event to every backend and joins their errors.
func (m *Multi) Send(ctx context.Context, event Event) error {
	var errs []error
	for _, a := range m.alerters {
		if err := a.Send(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}
