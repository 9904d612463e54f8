// Package ident holds the small helpers shared by the inventory services:
// id generation, date normalization and required-field validation.
package ident

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matijazezelj/assetutil/internal/apperr"
)

// ID prefixes per entity kind.
const (
	PrefixAsset         = "ast-"
	PrefixDependency    = "dep-"
	PrefixMaintenance   = "mnt-"
	PrefixIntegration   = "int-"
	PrefixConfiguration = "cfg-"
	PrefixHistory       = "hst-"
	PrefixAttachment    = "att-"
)

// NewID returns prefix + unix millis + a 9 character random suffix. Values
// are unique within a process lifetime; collisions are not checked.
func NewID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC3339 and date-only forms and returns the time in UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Configuration("invalid date %q (use RFC3339 or YYYY-MM-DD)", s)
}

// ISO formats t the way the API serializes timestamps.
func ISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ValidateRequiredFields fails with a Configuration error naming the first
// field, in the order given, that is absent from values or empty.
func ValidateRequiredFields(values map[string]string, fields []string, context string) error {
	for _, f := range fields {
		if v, ok := values[f]; !ok || strings.TrimSpace(v) == "" {
			return apperr.Configuration("Missing required field '%s' in %s", f, context)
		}
	}
	return nil
}
