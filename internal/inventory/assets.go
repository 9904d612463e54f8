package inventory

import (
	"context"
	"fmt"
	"maps"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// AssetService manages assets.
type AssetService struct {
	base
	assets store.Collection[models.Asset]
}

// NewAssetService returns an asset service over assets.
func NewAssetService(assets store.Collection[models.Asset], opts ...Option) *AssetService {
	return &AssetService{base: newBase(opts), assets: assets}
}

// AssetFilter narrows ListAssets. Empty fields match everything.
type AssetFilter struct {
	Type     string
	Status   models.AssetStatus
	Provider models.Provider
	Location string
}

func (f AssetFilter) match(a models.Asset) bool {
	return (f.Type == "" || a.Type == f.Type) &&
		(f.Status == "" || a.Status == f.Status) &&
		(f.Provider == "" || a.Provider == f.Provider) &&
		(f.Location == "" || a.Location == f.Location)
}

// CreateAsset stores a new asset. Status defaults to active.
func (s *AssetService) CreateAsset(ctx context.Context, in models.AssetInput) (a models.Asset, err error) {
	defer s.observe("asset", "create", &err)

	if err := in.Validate(); err != nil {
		return models.Asset{}, err
	}
	status := in.Status
	if status == "" {
		status = models.AssetActive
	}
	cfg := maps.Clone(in.Configuration)
	if cfg == nil {
		cfg = map[string]any{}
	}

	now := s.now().UTC()
	a = models.Asset{
		ID:            ident.NewID(ident.PrefixAsset),
		Name:          in.Name,
		Type:          in.Type,
		Status:        status,
		Location:      in.Location,
		Provider:      in.Provider,
		Configuration: cfg,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.assets.Put(ctx, a); err != nil {
		return models.Asset{}, fmt.Errorf("storing asset: %w", err)
	}

	s.logger.Info("asset created", "asset_id", a.ID, "name", a.Name, "type", a.Type)
	s.record(ctx, a.ID, models.ChangeCreate, []models.FieldChange{{Field: "asset", NewValue: a.Name}}, "")
	return a, nil
}

// GetAssetByID returns the asset or an AssetNotFound error.
func (s *AssetService) GetAssetByID(ctx context.Context, id string) (models.Asset, error) {
	a, err := s.assets.Get(ctx, id)
	if err != nil {
		return models.Asset{}, translate(err, func() error { return apperr.AssetNotFound(id) }, "loading asset")
	}
	return a, nil
}

// UpdateAsset merges the set fields of p over the asset. The id never
// changes and updatedAt always moves forward.
func (s *AssetService) UpdateAsset(ctx context.Context, id string, p models.AssetPatch) (a models.Asset, err error) {
	defer s.observe("asset", "update", &err)

	if err := p.Validate(); err != nil {
		return models.Asset{}, err
	}
	prev, err := s.GetAssetByID(ctx, id)
	if err != nil {
		return models.Asset{}, err
	}

	a = prev.Clone()
	var changes changeSet
	if p.Name != nil {
		changes.add("name", a.Name, *p.Name)
		a.Name = *p.Name
	}
	if p.Type != nil {
		changes.add("type", a.Type, *p.Type)
		a.Type = *p.Type
	}
	if p.Status != nil {
		changes.add("status", a.Status, *p.Status)
		a.Status = *p.Status
	}
	if p.Location != nil {
		changes.add("location", a.Location, *p.Location)
		a.Location = *p.Location
	}
	if p.Provider != nil {
		changes.add("provider", a.Provider, *p.Provider)
		a.Provider = *p.Provider
	}
	if p.Configuration != nil {
		cfg := maps.Clone(p.Configuration)
		changes.add("configuration", a.Configuration, cfg)
		a.Configuration = cfg
	}
	a.ID = id
	a.UpdatedAt = s.stamp(prev.UpdatedAt)

	if err := s.assets.Put(ctx, a); err != nil {
		return models.Asset{}, fmt.Errorf("storing asset: %w", err)
	}

	s.logger.Info("asset updated", "asset_id", id, "fields", len(changes))
	s.record(ctx, id, models.ChangeUpdate, changes, "")
	return a, nil
}

// DeleteAsset removes the asset. Records referencing it are left alone; see
// Inventory.RemoveAsset for cascading removal.
func (s *AssetService) DeleteAsset(ctx context.Context, id string) (err error) {
	defer s.observe("asset", "delete", &err)

	prev, err := s.GetAssetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, id); err != nil {
		return translate(err, func() error { return apperr.AssetNotFound(id) }, "deleting asset")
	}

	s.logger.Info("asset deleted", "asset_id", id)
	s.record(ctx, id, models.ChangeDelete, []models.FieldChange{{Field: "asset", OldValue: prev.Name}}, "")
	return nil
}

// GetAllAssets returns every asset in insertion order.
func (s *AssetService) GetAllAssets(ctx context.Context) ([]models.Asset, error) {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	return assets, nil
}

// ListAssets returns the assets matching f in insertion order.
func (s *AssetService) ListAssets(ctx context.Context, f AssetFilter) ([]models.Asset, error) {
	all, err := s.GetAllAssets(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Asset{}
	for _, a := range all {
		if f.match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
