package models

import (
	"strings"
	"time"

	"github.com/matijazezelj/assetutil/internal/apperr"
)

func required(value, field, context string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Configuration("Missing required field '%s' in %s", field, context)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// AssetInput carries every asset field except id and timestamps.
type AssetInput struct {
	Name          string         `json:"name" yaml:"name"`
	Type          string         `json:"type" yaml:"type"`
	Status        AssetStatus    `json:"status" yaml:"status"`
	Location      string         `json:"location" yaml:"location"`
	Provider      Provider       `json:"provider,omitempty" yaml:"provider,omitempty"`
	Configuration map[string]any `json:"configuration" yaml:"configuration"`
}

// Validate checks required fields and enumerations. An empty status is
// accepted and later defaults to active.
func (in AssetInput) Validate() error {
	if err := firstErr(
		required(in.Name, "name", "asset"),
		required(in.Type, "type", "asset"),
		required(in.Location, "location", "asset"),
	); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperr.Configuration("invalid asset status %q", in.Status)
	}
	if !in.Provider.Valid() {
		return apperr.Configuration("invalid provider %q (use: aws, azure, other)", in.Provider)
	}
	return nil
}

// AssetPatch is a partial asset update. Nil fields are left unchanged.
type AssetPatch struct {
	Name          *string        `json:"name,omitempty"`
	Type          *string        `json:"type,omitempty"`
	Status        *AssetStatus   `json:"status,omitempty"`
	Location      *string        `json:"location,omitempty"`
	Provider      *Provider      `json:"provider,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// Validate rejects blank names and unknown enumerations.
func (p AssetPatch) Validate() error {
	if p.Name != nil {
		if err := required(*p.Name, "name", "asset update"); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := required(*p.Type, "type", "asset update"); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperr.Configuration("invalid asset status %q", *p.Status)
	}
	if p.Provider != nil && !p.Provider.Valid() {
		return apperr.Configuration("invalid provider %q (use: aws, azure, other)", *p.Provider)
	}
	return nil
}

// DependencyInput carries every dependency field except id and timestamps.
type DependencyInput struct {
	SourceAssetID string         `json:"sourceAssetId" yaml:"sourceAssetId"`
	TargetAssetID string         `json:"targetAssetId" yaml:"targetAssetId"`
	Type          DependencyType `json:"type" yaml:"type"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Impact        Level          `json:"impact" yaml:"impact"`
}

// Validate checks required fields and enumerations.
func (in DependencyInput) Validate() error {
	if err := firstErr(
		required(in.SourceAssetID, "sourceAssetId", "dependency"),
		required(in.TargetAssetID, "targetAssetId", "dependency"),
	); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return apperr.Configuration("invalid dependency type %q (use: requires, depends-on, related-to)", in.Type)
	}
	if !in.Impact.Valid() {
		return apperr.Configuration("invalid impact %q (use: low, medium, high, critical)", in.Impact)
	}
	return nil
}

// DependencyPatch is a partial dependency update.
type DependencyPatch struct {
	SourceAssetID *string         `json:"sourceAssetId,omitempty"`
	TargetAssetID *string         `json:"targetAssetId,omitempty"`
	Type          *DependencyType `json:"type,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Impact        *Level          `json:"impact,omitempty"`
}

// Validate rejects blank endpoints and unknown enumerations.
func (p DependencyPatch) Validate() error {
	if p.SourceAssetID != nil {
		if err := required(*p.SourceAssetID, "sourceAssetId", "dependency update"); err != nil {
			return err
		}
	}
	if p.TargetAssetID != nil {
		if err := required(*p.TargetAssetID, "targetAssetId", "dependency update"); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperr.Configuration("invalid dependency type %q", *p.Type)
	}
	if p.Impact != nil && !p.Impact.Valid() {
		return apperr.Configuration("invalid impact %q", *p.Impact)
	}
	return nil
}

// MaintenanceDetails describes the work of a maintenance window.
type MaintenanceDetails struct {
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Type        MaintenanceType `json:"type" yaml:"type"`
	AssignedTo  string          `json:"assignedTo" yaml:"assignedTo"`
	Priority    Level           `json:"priority" yaml:"priority"`
	Notes       string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate checks required fields and enumerations.
func (d MaintenanceDetails) Validate() error {
	if err := required(d.Title, "title", "maintenance details"); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return apperr.Configuration("invalid maintenance type %q (use: preventive, corrective, predictive)", d.Type)
	}
	if !d.Priority.Valid() {
		return apperr.Configuration("invalid priority %q (use: low, medium, high, critical)", d.Priority)
	}
	return nil
}

// MaintenancePatch is a partial schedule update.
type MaintenancePatch struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	StartDate   *time.Time         `json:"startDate,omitempty"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
	Status      *MaintenanceStatus `json:"status,omitempty"`
	Type        *MaintenanceType   `json:"type,omitempty"`
	AssignedTo  *string            `json:"assignedTo,omitempty"`
	Priority    *Level             `json:"priority,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

// Validate rejects blank titles and unknown enumerations.
func (p MaintenancePatch) Validate() error {
	if p.Title != nil {
		if err := required(*p.Title, "title", "maintenance update"); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperr.Configuration("invalid maintenance status %q", *p.Status)
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperr.Configuration("invalid maintenance type %q", *p.Type)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return apperr.Configuration("invalid priority %q", *p.Priority)
	}
	return nil
}

// AWSConfig is the input of an AWS integration.
type AWSConfig struct {
	Region      string      `json:"region"`
	Credentials Credentials `json:"credentials"`
}

// AzureConfig is the input of an Azure integration.
type AzureConfig struct {
	Region      string      `json:"region"`
	Credentials Credentials `json:"credentials"`
}

// ConfigurationInput carries the fields of a new configuration baseline.
type ConfigurationInput struct {
	AssetID  string         `json:"assetId"`
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Settings map[string]any `json:"settings"`
}

// Validate checks required fields.
func (in ConfigurationInput) Validate() error {
	return firstErr(
		required(in.AssetID, "assetId", "configuration"),
		required(in.Name, "name", "configuration"),
		required(in.Version, "version", "configuration"),
	)
}

// ConfigurationPatch is a partial configuration update.
type ConfigurationPatch struct {
	Name     *string        `json:"name,omitempty"`
	Version  *string        `json:"version,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Validate rejects blank names and versions.
func (p ConfigurationPatch) Validate() error {
	if p.Name != nil {
		if err := required(*p.Name, "name", "configuration update"); err != nil {
			return err
		}
	}
	if p.Version != nil {
		if err := required(*p.Version, "version", "configuration update"); err != nil {
			return err
		}
	}
	return nil
}

// HistoryInput carries a change to record.
type HistoryInput struct {
	AssetID    string        `json:"assetId"`
	ChangeType ChangeType    `json:"changeType"`
	Changes    []FieldChange `json:"changes"`
	ChangedBy  string        `json:"changedBy"`
	Comment    string        `json:"comment,omitempty"`
}

// Validate checks required fields and the change type.
func (in HistoryInput) Validate() error {
	if err := required(in.AssetID, "assetId", "history entry"); err != nil {
		return err
	}
	if !in.ChangeType.Valid() {
		return apperr.Configuration("invalid change type %q", in.ChangeType)
	}
	return nil
}

// AttachmentInput carries attachment metadata.
type AttachmentInput struct {
	AssetID     string `json:"assetId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Path        string `json:"path"`
	UploadedBy  string `json:"uploadedBy"`
	Description string `json:"description,omitempty"`
}

// Validate checks required fields. Path may be empty when the content is
// uploaded through blob storage, which assigns it.
func (in AttachmentInput) Validate() error {
	if err := firstErr(
		required(in.AssetID, "assetId", "attachment"),
		required(in.Name, "name", "attachment"),
		required(in.UploadedBy, "uploadedBy", "attachment"),
	); err != nil {
		return err
	}
	if in.Size < 0 {
		return apperr.Configuration("attachment size must not be negative")
	}
	return nil
}
