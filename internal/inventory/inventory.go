// Package inventory implements the asset inventory services: assets,
// dependencies, maintenance schedules, cloud integrations, configuration
// baselines, attachments and the append-only change history.
//
// Each service owns one store.Collection and never touches another
// service's records. Cross-entity references are plain ids and are not
// checked. The Inventory facade wires the services together, records history
// for mutations and offers cascading asset removal.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// BlobStore keeps attachment content.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Verifier performs a live credential check against a cloud provider.
type Verifier interface {
	Verify(ctx context.Context, integ models.Integration) error
}

// Observer is notified after every mutating operation.
type Observer interface {
	ObserveOperation(entity, op string, err error)
}

// Option configures a service or the facade.
type Option func(*settings)

type settings struct {
	now      func() time.Time
	logger   *slog.Logger
	blobs    BlobStore
	verifier Verifier
	observer Observer
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithBlobStore enables attachment uploads.
func WithBlobStore(b BlobStore) Option {
	return func(s *settings) { s.blobs = b }
}

// WithVerifier enables live integration verification.
func WithVerifier(v Verifier) Option {
	return func(s *settings) { s.verifier = v }
}

// WithObserver registers an operation observer.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// base carries what every service shares.
type base struct {
	settings
	history *HistoryService
}

func newBase(opts []Option) base {
	return base{settings: newSettings(opts)}
}

// stamp returns the current UTC time, nudged past prev so that updatedAt
// strictly increases even when the clock has not moved.
func (b *base) stamp(prev time.Time) time.Time {
	now := b.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (b *base) observe(entity, op string, err *error) {
	if b.observer != nil {
		b.observer.ObserveOperation(entity, op, *err)
	}
}

// record appends a history entry. Failures are logged and never fail the
// mutation that triggered them.
func (b *base) record(ctx context.Context, assetID string, ct models.ChangeType, changes []models.FieldChange, comment string) {
	if b.history == nil || assetID == "" {
		return
	}
	_, err := b.history.RecordChange(ctx, models.HistoryInput{
		AssetID:    assetID,
		ChangeType: ct,
		Changes:    changes,
		ChangedBy:  Actor(ctx),
		Comment:    comment,
	})
	if err != nil {
		b.logger.Error("failed to record history", "error", err, "asset_id", assetID, "change_type", ct)
	}
}

// translate maps store.ErrNotFound to the domain error built by notFound
// and wraps anything else.
func translate(err error, notFound func() error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound()
	}
	return fmt.Errorf("%s: %w", what, err)
}

// changeSet collects field changes, skipping fields whose value is equal.
type changeSet []models.FieldChange

func (c *changeSet) add(field string, oldValue, newValue any) {
	if reflect.DeepEqual(oldValue, newValue) {
		return
	}
	*c = append(*c, models.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
}
