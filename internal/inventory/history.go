package inventory

import (
	"context"
	"fmt"

	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// HistoryService is the append-only change log. It has no update or delete.
type HistoryService struct {
	base
	entries store.Collection[models.HistoryEntry]
}

// NewHistoryService returns a history service over entries.
func NewHistoryService(entries store.Collection[models.HistoryEntry], opts ...Option) *HistoryService {
	return &HistoryService{base: newBase(opts), entries: entries}
}

// RecordChange appends an entry with a fresh id and timestamp.
func (s *HistoryService) RecordChange(ctx context.Context, in models.HistoryInput) (models.HistoryEntry, error) {
	if err := in.Validate(); err != nil {
		return models.HistoryEntry{}, err
	}
	changes := in.Changes
	if changes == nil {
		changes = []models.FieldChange{}
	}
	by := in.ChangedBy
	if by == "" {
		by = Actor(ctx)
	}

	entry := models.HistoryEntry{
		ID:         ident.NewID(ident.PrefixHistory),
		AssetID:    in.AssetID,
		ChangeType: in.ChangeType,
		Changes:    changes,
		ChangedBy:  by,
		Timestamp:  s.now().UTC(),
		Comment:    in.Comment,
	}
	if err := s.entries.Put(ctx, entry); err != nil {
		return models.HistoryEntry{}, fmt.Errorf("storing history entry: %w", err)
	}
	return entry, nil
}

// GetAllHistory returns every entry in recording order.
func (s *HistoryService) GetAllHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// GetHistoryForAsset returns the entries of one asset in recording order.
func (s *HistoryService) GetHistoryForAsset(ctx context.Context, assetID string) ([]models.HistoryEntry, error) {
	all, err := s.GetAllHistory(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.HistoryEntry{}
	for _, e := range all {
		if e.AssetID == assetID {
			out = append(out, e)
		}
	}
	return out, nil
}
