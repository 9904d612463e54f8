package alert

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// StdoutAlerter prints one line per event.
type StdoutAlerter struct {
	w io.Writer
}

// NewStdoutAlerter creates a new stdout alerter.
func NewStdoutAlerter() *StdoutAlerter {
	return &StdoutAlerter{w: os.Stdout}
}

// Name returns "stdout".
func (s *StdoutAlerter) Name() string {
	return "stdout"
}

// Send prints the event to stdout.
func (s *StdoutAlerter) Send(_ context.Context, event Event) error {
	icon := severityIcon(event.Severity)
	ts := event.Timestamp.Format(time.RFC3339)

	if _, err := fmt.Fprintf(s.w, "%s [%s] %s %s: %s\n", icon, ts, event.EventType, event.Asset.ID, event.Message); err != nil {
		return err
	}

	if m := event.Maintenance; m != nil {
		_, err := fmt.Fprintf(s.w, "   Window: %s %s (%s to %s)\n", m.ID, m.Title,
			m.StartDate.Format(time.RFC3339), m.EndDate.Format(time.RFC3339))
		return err
	}

	return nil
}

func severityIcon(severity string) string {
	switch severity {
	case "critical":
		return "[CRIT]"
	case "warning":
		return "[WARN]"
	case "info":
		return "[INFO]"
	default:
		return "[----]"
	}
}
