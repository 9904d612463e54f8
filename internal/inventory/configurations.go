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

// ConfigurationService manages configuration baselines and their compliance
// verdicts.
type ConfigurationService struct {
	base
	configs store.Collection[models.Configuration]
}

// NewConfigurationService returns a configuration service over configs.
func NewConfigurationService(configs store.Collection[models.Configuration], opts ...Option) *ConfigurationService {
	return &ConfigurationService{base: newBase(opts), configs: configs}
}

func configurationNotFound(id string) func() error {
	return func() error { return apperr.NotFound(apperr.ResourceConfiguration, id) }
}

// CreateConfiguration stores a new baseline with compliance pending.
func (s *ConfigurationService) CreateConfiguration(ctx context.Context, in models.ConfigurationInput) (c models.Configuration, err error) {
	defer s.observe("configuration", "create", &err)

	if err := in.Validate(); err != nil {
		return models.Configuration{}, err
	}
	values := maps.Clone(in.Settings)
	if values == nil {
		values = map[string]any{}
	}

	now := s.now().UTC()
	c = models.Configuration{
		ID:         ident.NewID(ident.PrefixConfiguration),
		AssetID:    in.AssetID,
		Name:       in.Name,
		Version:    in.Version,
		Settings:   values,
		Compliance: models.Compliance{Status: models.Pending, LastChecked: now},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.configs.Put(ctx, c); err != nil {
		return models.Configuration{}, fmt.Errorf("storing configuration: %w", err)
	}

	s.logger.Info("configuration created", "configuration_id", c.ID, "asset_id", c.AssetID, "version", c.Version)
	s.record(ctx, c.AssetID, models.ChangeConfiguration,
		[]models.FieldChange{{Field: "version", NewValue: c.Version}},
		fmt.Sprintf("configuration %s created", c.ID))
	return c, nil
}

// GetConfigurationByID returns the configuration or a NotFound error.
func (s *ConfigurationService) GetConfigurationByID(ctx context.Context, id string) (models.Configuration, error) {
	c, err := s.configs.Get(ctx, id)
	if err != nil {
		return models.Configuration{}, translate(err, configurationNotFound(id), "loading configuration")
	}
	return c, nil
}

// GetAllConfigurations returns every configuration in insertion order.
func (s *ConfigurationService) GetAllConfigurations(ctx context.Context) ([]models.Configuration, error) {
	all, err := s.configs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing configurations: %w", err)
	}
	return all, nil
}

// GetConfigurationsForAsset returns the configurations of one asset.
func (s *ConfigurationService) GetConfigurationsForAsset(ctx context.Context, assetID string) ([]models.Configuration, error) {
	all, err := s.GetAllConfigurations(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Configuration{}
	for _, c := range all {
		if c.AssetID == assetID {
			out = append(out, c)
		}
	}
	return out, nil
}

// UpdateConfiguration merges the set fields of p over the configuration.
func (s *ConfigurationService) UpdateConfiguration(ctx context.Context, id string, p models.ConfigurationPatch) (c models.Configuration, err error) {
	defer s.observe("configuration", "update", &err)

	if err := p.Validate(); err != nil {
		return models.Configuration{}, err
	}
	prev, err := s.GetConfigurationByID(ctx, id)
	if err != nil {
		return models.Configuration{}, err
	}

	c = prev.Clone()
	var changes changeSet
	if p.Name != nil {
		changes.add("name", c.Name, *p.Name)
		c.Name = *p.Name
	}
	if p.Version != nil {
		changes.add("version", c.Version, *p.Version)
		c.Version = *p.Version
	}
	if p.Settings != nil {
		values := maps.Clone(p.Settings)
		changes.add("settings", c.Settings, values)
		c.Settings = values
	}
	c.ID = id
	c.UpdatedAt = s.stamp(prev.UpdatedAt)

	if err := s.configs.Put(ctx, c); err != nil {
		return models.Configuration{}, fmt.Errorf("storing configuration: %w", err)
	}

	s.logger.Info("configuration updated", "configuration_id", id)
	s.record(ctx, c.AssetID, models.ChangeConfiguration, changes, fmt.Sprintf("configuration %s updated", id))
	return c, nil
}

// RecordComplianceCheck stores a compliance verdict.
func (s *ConfigurationService) RecordComplianceCheck(ctx context.Context, id string, status models.ComplianceStatus) (c models.Configuration, err error) {
	defer s.observe("configuration", "compliance", &err)

	if !status.Valid() {
		return models.Configuration{}, apperr.Configuration("invalid compliance status %q (use: compliant, non-compliant, pending)", status)
	}
	prev, err := s.GetConfigurationByID(ctx, id)
	if err != nil {
		return models.Configuration{}, err
	}

	c = prev
	now := s.stamp(prev.UpdatedAt)
	c.Compliance = models.Compliance{Status: status, LastChecked: now}
	c.UpdatedAt = now
	if err := s.configs.Put(ctx, c); err != nil {
		return models.Configuration{}, fmt.Errorf("storing configuration: %w", err)
	}

	s.record(ctx, c.AssetID, models.ChangeConfiguration,
		[]models.FieldChange{{Field: "compliance", OldValue: prev.Compliance.Status, NewValue: status}},
		fmt.Sprintf("configuration %s compliance checked", id))
	return c, nil
}

// DeleteConfiguration removes the configuration.
func (s *ConfigurationService) DeleteConfiguration(ctx context.Context, id string) (err error) {
	defer s.observe("configuration", "delete", &err)

	if err := s.configs.Delete(ctx, id); err != nil {
		return translate(err, configurationNotFound(id), "deleting configuration")
	}
	s.logger.Info("configuration deleted", "configuration_id", id)
	return nil
}
