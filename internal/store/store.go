// Package store provides the id-addressed collections the inventory services
// keep their entities in. Every backend preserves insertion order on List and
// keeps the original position when an existing record is replaced.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Get and Delete when no record has the id.
var ErrNotFound = errors.New("record not found")

// Record is an entity addressable by id.
type Record interface {
	RecordID() string
}

// Collection holds records of one entity type.
type Collection[T Record] interface {
	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// List returns every record in insertion order.
	List(ctx context.Context) ([]T, error)

	// Put inserts the record or replaces the one with the same id.
	Put(ctx context.Context, rec T) error

	// Delete removes the record with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// Table names used by the SQL backends.
const (
	TableAssets            = "assets"
	TableDependencies      = "dependencies"
	TableSchedules         = "maintenance_schedules"
	TableArchivedSchedules = "maintenance_archive"
	TableIntegrations      = "integrations"
	TableConfigurations    = "configurations"
	TableHistory           = "history"
	TableAttachments       = "attachments"
)

// Tables lists every table in creation order.
var Tables = []string{
	TableAssets,
	TableDependencies,
	TableSchedules,
	TableArchivedSchedules,
	TableIntegrations,
	TableConfigurations,
	TableHistory,
	TableAttachments,
}

var tableName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Table names are interpolated into SQL, so they are restricted to
// lower-case identifiers.
func checkTable(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// cloner is implemented by records holding maps, so that callers never share
// them with the memory backend.
type cloner[T any] interface {
	Clone() T
}

func clone[T any](v T) T {
	if c, ok := any(v).(cloner[T]); ok {
		return c.Clone()
	}
	return v
}
