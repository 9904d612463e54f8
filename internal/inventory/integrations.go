package inventory

import (
	"context"
	"fmt"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// Required credential fields per provider, in the order they are reported.
var (
	awsFields   = []string{"accessKey", "secretKey"}
	azureFields = []string{"tenantId", "clientId", "clientSecret"}
)

// CloudIntegrationService stores connections to cloud providers.
type CloudIntegrationService struct {
	base
	integrations store.Collection[models.Integration]
}

// NewCloudIntegrationService returns an integration service over integrations.
func NewCloudIntegrationService(integrations store.Collection[models.Integration], opts ...Option) *CloudIntegrationService {
	return &CloudIntegrationService{base: newBase(opts), integrations: integrations}
}

func requiredCredentials(provider models.CloudProvider, creds models.Credentials) error {
	switch provider {
	case models.CloudAWS:
		return ident.ValidateRequiredFields(creds.Fields(), awsFields, "AWS credentials")
	case models.CloudAzure:
		return ident.ValidateRequiredFields(creds.Fields(), azureFields, "Azure credentials")
	default:
		return apperr.Configuration("unsupported cloud provider %q (use: aws, azure)", provider)
	}
}

// IntegrateAWS stores an active AWS integration.
func (s *CloudIntegrationService) IntegrateAWS(ctx context.Context, cfg models.AWSConfig) (models.Integration, error) {
	return s.integrate(ctx, models.CloudAWS, cfg.Region, cfg.Credentials)
}

// IntegrateAzure stores an active Azure integration.
func (s *CloudIntegrationService) IntegrateAzure(ctx context.Context, cfg models.AzureConfig) (models.Integration, error) {
	return s.integrate(ctx, models.CloudAzure, cfg.Region, cfg.Credentials)
}

func (s *CloudIntegrationService) integrate(ctx context.Context, provider models.CloudProvider, region string, creds models.Credentials) (integ models.Integration, err error) {
	defer s.observe("integration", "create", &err)

	if err := requiredCredentials(provider, creds); err != nil {
		return models.Integration{}, err
	}

	now := s.now().UTC()
	integ = models.Integration{
		ID:          ident.NewID(ident.PrefixIntegration),
		Provider:    provider,
		Credentials: creds,
		Region:      region,
		Status:      models.IntegrationActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.integrations.Put(ctx, integ); err != nil {
		return models.Integration{}, fmt.Errorf("storing integration: %w", err)
	}

	s.logger.Info("integration created", "integration_id", integ.ID, "provider", provider, "region", region)
	return integ, nil
}

// ListIntegrations returns every integration in insertion order.
func (s *CloudIntegrationService) ListIntegrations(ctx context.Context) ([]models.Integration, error) {
	all, err := s.integrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	return all, nil
}

// GetIntegration returns the integration or a CloudIntegration error.
func (s *CloudIntegrationService) GetIntegration(ctx context.Context, id string) (models.Integration, error) {
	integ, err := s.integrations.Get(ctx, id)
	if err != nil {
		return models.Integration{}, translate(err, func() error { return apperr.IntegrationNotFound(id) }, "loading integration")
	}
	return integ, nil
}

// RemoveIntegration deletes the integration.
func (s *CloudIntegrationService) RemoveIntegration(ctx context.Context, id string) (err error) {
	defer s.observe("integration", "delete", &err)

	if err := s.integrations.Delete(ctx, id); err != nil {
		return translate(err, func() error { return apperr.IntegrationNotFound(id) }, "deleting integration")
	}
	s.logger.Info("integration removed", "integration_id", id)
	return nil
}

// SetIntegrationStatus switches an integration between active and inactive.
func (s *CloudIntegrationService) SetIntegrationStatus(ctx context.Context, id string, status models.IntegrationStatus) (integ models.Integration, err error) {
	defer s.observe("integration", "update", &err)

	if !status.Valid() {
		return models.Integration{}, apperr.Configuration("invalid integration status %q (use: active, inactive)", status)
	}
	prev, err := s.GetIntegration(ctx, id)
	if err != nil {
		return models.Integration{}, err
	}
	integ = prev
	integ.Status = status
	integ.UpdatedAt = s.stamp(prev.UpdatedAt)
	if err := s.integrations.Put(ctx, integ); err != nil {
		return models.Integration{}, fmt.Errorf("storing integration: %w", err)
	}
	return integ, nil
}

// ValidateCredentials checks that every field the provider needs is present.
// It never contacts the provider.
func (s *CloudIntegrationService) ValidateCredentials(provider models.CloudProvider, creds models.Credentials) (bool, error) {
	if err := requiredCredentials(provider, creds); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyIntegration runs a live credential check through the configured
// Verifier. Only AWS integrations can be verified.
func (s *CloudIntegrationService) VerifyIntegration(ctx context.Context, id string) error {
	integ, err := s.GetIntegration(ctx, id)
	if err != nil {
		return err
	}
	if integ.Provider != models.CloudAWS {
		return apperr.CloudIntegration(string(integ.Provider), "live verification not supported")
	}
	if s.verifier == nil {
		return apperr.CloudIntegration(string(integ.Provider), "no verifier configured")
	}
	if err := s.verifier.Verify(ctx, integ); err != nil {
		s.logger.Warn("integration verification failed", "integration_id", id, "error", err)
		return err
	}
	s.logger.Info("integration verified", "integration_id", id)
	return nil
}
