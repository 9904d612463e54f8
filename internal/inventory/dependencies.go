package inventory

import (
	"context"
	"fmt"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// DependencyService manages directed dependencies between assets. Asset ids
// are not checked, and the same pair may be linked more than once.
type DependencyService struct {
	base
	deps store.Collection[models.Dependency]
}

// NewDependencyService returns a dependency service over deps.
func NewDependencyService(deps store.Collection[models.Dependency], opts ...Option) *DependencyService {
	return &DependencyService{base: newBase(opts), deps: deps}
}

func dependencyNotFound(id string) func() error {
	return func() error { return apperr.NotFound(apperr.ResourceDependency, id) }
}

// AddDependency stores a new dependency.
func (s *DependencyService) AddDependency(ctx context.Context, in models.DependencyInput) (d models.Dependency, err error) {
	defer s.observe("dependency", "create", &err)

	if err := in.Validate(); err != nil {
		return models.Dependency{}, err
	}
	now := s.now().UTC()
	d = models.Dependency{
		ID:            ident.NewID(ident.PrefixDependency),
		SourceAssetID: in.SourceAssetID,
		TargetAssetID: in.TargetAssetID,
		Type:          in.Type,
		Description:   in.Description,
		Impact:        in.Impact,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.deps.Put(ctx, d); err != nil {
		return models.Dependency{}, fmt.Errorf("storing dependency: %w", err)
	}

	s.logger.Info("dependency added", "dependency_id", d.ID, "source", d.SourceAssetID, "target", d.TargetAssetID, "type", d.Type)
	s.record(ctx, d.SourceAssetID, models.ChangeDependency,
		[]models.FieldChange{{Field: "dependency", NewValue: d.TargetAssetID}},
		fmt.Sprintf("dependency %s added", d.ID))
	return d, nil
}

// GetDependencyByID returns the dependency or a NotFound error.
func (s *DependencyService) GetDependencyByID(ctx context.Context, id string) (models.Dependency, error) {
	d, err := s.deps.Get(ctx, id)
	if err != nil {
		return models.Dependency{}, translate(err, dependencyNotFound(id), "loading dependency")
	}
	return d, nil
}

// UpdateDependency merges the set fields of p over the dependency.
func (s *DependencyService) UpdateDependency(ctx context.Context, id string, p models.DependencyPatch) (d models.Dependency, err error) {
	defer s.observe("dependency", "update", &err)

	if err := p.Validate(); err != nil {
		return models.Dependency{}, err
	}
	prev, err := s.GetDependencyByID(ctx, id)
	if err != nil {
		return models.Dependency{}, err
	}

	d = prev
	var changes changeSet
	if p.SourceAssetID != nil {
		changes.add("sourceAssetId", d.SourceAssetID, *p.SourceAssetID)
		d.SourceAssetID = *p.SourceAssetID
	}
	if p.TargetAssetID != nil {
		changes.add("targetAssetId", d.TargetAssetID, *p.TargetAssetID)
		d.TargetAssetID = *p.TargetAssetID
	}
	if p.Type != nil {
		changes.add("type", d.Type, *p.Type)
		d.Type = *p.Type
	}
	if p.Description != nil {
		changes.add("description", d.Description, *p.Description)
		d.Description = *p.Description
	}
	if p.Impact != nil {
		changes.add("impact", d.Impact, *p.Impact)
		d.Impact = *p.Impact
	}
	d.ID = id
	d.UpdatedAt = s.stamp(prev.UpdatedAt)

	if err := s.deps.Put(ctx, d); err != nil {
		return models.Dependency{}, fmt.Errorf("storing dependency: %w", err)
	}

	s.logger.Info("dependency updated", "dependency_id", id)
	s.record(ctx, d.SourceAssetID, models.ChangeDependency, changes, fmt.Sprintf("dependency %s updated", id))
	return d, nil
}

// RemoveDependency deletes the dependency.
func (s *DependencyService) RemoveDependency(ctx context.Context, id string) (err error) {
	defer s.observe("dependency", "delete", &err)

	prev, err := s.GetDependencyByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deps.Delete(ctx, id); err != nil {
		return translate(err, dependencyNotFound(id), "deleting dependency")
	}

	s.logger.Info("dependency removed", "dependency_id", id)
	s.record(ctx, prev.SourceAssetID, models.ChangeDependency,
		[]models.FieldChange{{Field: "dependency", OldValue: prev.TargetAssetID}},
		fmt.Sprintf("dependency %s removed", id))
	return nil
}

// GetDependenciesForAsset returns every dependency with assetID at either end.
func (s *DependencyService) GetDependenciesForAsset(ctx context.Context, assetID string) ([]models.Dependency, error) {
	all, err := s.GetAllDependencies(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Dependency{}
	for _, d := range all {
		if d.Involves(assetID) {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetAllDependencies returns every dependency in insertion order.
func (s *DependencyService) GetAllDependencies(ctx context.Context) ([]models.Dependency, error) {
	deps, err := s.deps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	return deps, nil
}
