package models

import (
	"maps"
	"time"
)

// AssetStatus is the operational status of an asset.
type AssetStatus string

// Asset status constants.
const (
	AssetActive      AssetStatus = "active"
	AssetInactive    AssetStatus = "inactive"
	AssetMaintenance AssetStatus = "maintenance"
)

// Valid reports whether s is a recognized asset status.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetActive, AssetInactive, AssetMaintenance:
		return true
	}
	return false
}

// Provider is the hosting provider recorded on an asset.
type Provider string

// Provider constants.
const (
	ProviderAWS   Provider = "aws"
	ProviderAzure Provider = "azure"
	ProviderOther Provider = "other"
)

// Valid reports whether p is a recognized provider. The empty value means
// "not set" and is valid.
func (p Provider) Valid() bool {
	switch p {
	case "", ProviderAWS, ProviderAzure, ProviderOther:
		return true
	}
	return false
}

// Asset is a tracked infrastructure or application component.
type Asset struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Type          string         `json:"type" yaml:"type"`
	Status        AssetStatus    `json:"status" yaml:"status"`
	Location      string         `json:"location" yaml:"location"`
	Provider      Provider       `json:"provider,omitempty" yaml:"provider,omitempty"`
	Configuration map[string]any `json:"configuration" yaml:"configuration"`
	CreatedAt     time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// RecordID returns the asset id.
func (a Asset) RecordID() string { return a.ID }

// Clone returns a copy that shares no map with a.
func (a Asset) Clone() Asset {
	a.Configuration = maps.Clone(a.Configuration)
	return a
}

// DependencyType is the nature of a dependency relationship.
type DependencyType string

// Dependency type constants.
const (
	DependencyRequires  DependencyType = "requires"
	DependencyDependsOn DependencyType = "depends-on"
	DependencyRelatedTo DependencyType = "related-to"
)

// Valid reports whether t is a recognized dependency type.
func (t DependencyType) Valid() bool {
	switch t {
	case DependencyRequires, DependencyDependsOn, DependencyRelatedTo:
		return true
	}
	return false
}

// Level is a four-step severity scale used for dependency impact and
// maintenance priority.
type Level string

// Level constants.
const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Valid reports whether l is a recognized level.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// Dependency is a directed relationship from SourceAssetID to TargetAssetID.
// Asset ids are not checked; dangling references are allowed.
type Dependency struct {
	ID            string         `json:"id" yaml:"id"`
	SourceAssetID string         `json:"sourceAssetId" yaml:"sourceAssetId"`
	TargetAssetID string         `json:"targetAssetId" yaml:"targetAssetId"`
	Type          DependencyType `json:"type" yaml:"type"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Impact        Level          `json:"impact" yaml:"impact"`
	CreatedAt     time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// RecordID returns the dependency id.
func (d Dependency) RecordID() string { return d.ID }

// Involves reports whether assetID is either end of the dependency.
func (d Dependency) Involves(assetID string) bool {
	return d.SourceAssetID == assetID || d.TargetAssetID == assetID
}

// MaintenanceStatus is the lifecycle state of a maintenance schedule.
type MaintenanceStatus string

// Maintenance status constants.
const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in-progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// Valid reports whether s is a recognized maintenance status.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	}
	return false
}

// MaintenanceType is the kind of maintenance performed.
type MaintenanceType string

// Maintenance type constants.
const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenancePredictive MaintenanceType = "predictive"
)

// Valid reports whether t is a recognized maintenance type.
func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenancePreventive, MaintenanceCorrective, MaintenancePredictive:
		return true
	}
	return false
}

// MaintenanceSchedule is a planned maintenance window for an asset.
type MaintenanceSchedule struct {
	ID          string            `json:"id" yaml:"id"`
	AssetID     string            `json:"assetId" yaml:"assetId"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	StartDate   time.Time         `json:"startDate" yaml:"startDate"`
	EndDate     time.Time         `json:"endDate" yaml:"endDate"`
	Status      MaintenanceStatus `json:"status" yaml:"status"`
	Type        MaintenanceType   `json:"type" yaml:"type"`
	AssignedTo  string            `json:"assignedTo" yaml:"assignedTo"`
	Priority    Level             `json:"priority" yaml:"priority"`
	Notes       string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

// RecordID returns the schedule id.
func (m MaintenanceSchedule) RecordID() string { return m.ID }

// CloudProvider is a provider that integrations can be created for.
type CloudProvider string

// Cloud provider constants.
const (
	CloudAWS   CloudProvider = "aws"
	CloudAzure CloudProvider = "azure"
)

// IntegrationStatus is the state of a cloud integration.
type IntegrationStatus string

// Integration status constants.
const (
	IntegrationActive   IntegrationStatus = "active"
	IntegrationInactive IntegrationStatus = "inactive"
)

// Valid reports whether s is a recognized integration status.
func (s IntegrationStatus) Valid() bool {
	return s == IntegrationActive || s == IntegrationInactive
}

// Credentials holds provider-shaped secrets. AWS uses AccessKey/SecretKey,
// Azure uses TenantID/ClientID/ClientSecret.
type Credentials struct {
	AccessKey    string `json:"accessKey,omitempty" yaml:"accessKey,omitempty"`
	SecretKey    string `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
	TenantID     string `json:"tenantId,omitempty" yaml:"tenantId,omitempty"`
	ClientID     string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
}

// Fields returns the non-empty credential values keyed by their JSON names.
func (c Credentials) Fields() map[string]string {
	out := make(map[string]string, 5)
	for k, v := range map[string]string{
		"accessKey":    c.AccessKey,
		"secretKey":    c.SecretKey,
		"tenantId":     c.TenantID,
		"clientId":     c.ClientID,
		"clientSecret": c.ClientSecret,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Redacted masks every secret except the identifying key ids.
func (c Credentials) Redacted() Credentials {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	return Credentials{
		AccessKey:    c.AccessKey,
		SecretKey:    mask(c.SecretKey),
		TenantID:     c.TenantID,
		ClientID:     c.ClientID,
		ClientSecret: mask(c.ClientSecret),
	}
}

// Integration is a stored connection to a cloud provider.
type Integration struct {
	ID          string            `json:"id" yaml:"id"`
	Provider    CloudProvider     `json:"provider" yaml:"provider"`
	Credentials Credentials       `json:"credentials" yaml:"credentials"`
	Region      string            `json:"region" yaml:"region"`
	Status      IntegrationStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

// RecordID returns the integration id.
func (i Integration) RecordID() string { return i.ID }

// Redacted returns a copy safe to hand to API clients.
func (i Integration) Redacted() Integration {
	i.Credentials = i.Credentials.Redacted()
	return i
}

// ComplianceStatus reports whether a configuration baseline satisfies policy.
type ComplianceStatus string

// Compliance status constants.
const (
	Compliant    ComplianceStatus = "compliant"
	NonCompliant ComplianceStatus = "non-compliant"
	Pending      ComplianceStatus = "pending"
)

// Valid reports whether s is a recognized compliance status.
func (s ComplianceStatus) Valid() bool {
	switch s {
	case Compliant, NonCompliant, Pending:
		return true
	}
	return false
}

// Compliance is the last compliance verdict of a configuration.
type Compliance struct {
	Status      ComplianceStatus `json:"status" yaml:"status"`
	LastChecked time.Time        `json:"lastChecked" yaml:"lastChecked"`
}

// Configuration is a versioned configuration baseline for an asset.
type Configuration struct {
	ID         string         `json:"id" yaml:"id"`
	AssetID    string         `json:"assetId" yaml:"assetId"`
	Name       string         `json:"name" yaml:"name"`
	Version    string         `json:"version" yaml:"version"`
	Settings   map[string]any `json:"settings" yaml:"settings"`
	Compliance Compliance     `json:"compliance" yaml:"compliance"`
	CreatedAt  time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// RecordID returns the configuration id.
func (c Configuration) RecordID() string { return c.ID }

// Clone returns a copy that shares no map with c.
func (c Configuration) Clone() Configuration {
	c.Settings = maps.Clone(c.Settings)
	return c
}

// ChangeType classifies a history entry.
type ChangeType string

// Change type constants.
const (
	ChangeCreate        ChangeType = "create"
	ChangeUpdate        ChangeType = "update"
	ChangeDelete        ChangeType = "delete"
	ChangeConfiguration ChangeType = "configuration"
	ChangeMaintenance   ChangeType = "maintenance"
	ChangeDependency    ChangeType = "dependency"
)

// Valid reports whether t is a recognized change type.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeCreate, ChangeUpdate, ChangeDelete, ChangeConfiguration, ChangeMaintenance, ChangeDependency:
		return true
	}
	return false
}

// FieldChange is one field modification inside a history entry.
type FieldChange struct {
	Field    string `json:"field" yaml:"field"`
	OldValue any    `json:"oldValue" yaml:"oldValue"`
	NewValue any    `json:"newValue" yaml:"newValue"`
}

// HistoryEntry is an append-only change record for an asset.
type HistoryEntry struct {
	ID         string        `json:"id" yaml:"id"`
	AssetID    string        `json:"assetId" yaml:"assetId"`
	ChangeType ChangeType    `json:"changeType" yaml:"changeType"`
	Changes    []FieldChange `json:"changes" yaml:"changes"`
	ChangedBy  string        `json:"changedBy" yaml:"changedBy"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp"`
	Comment    string        `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// RecordID returns the history entry id.
func (h HistoryEntry) RecordID() string { return h.ID }

// Attachment is a file attached to an asset.
type Attachment struct {
	ID          string    `json:"id" yaml:"id"`
	AssetID     string    `json:"assetId" yaml:"assetId"`
	Name        string    `json:"name" yaml:"name"`
	Type        string    `json:"type" yaml:"type"`
	Size        int64     `json:"size" yaml:"size"`
	Path        string    `json:"path" yaml:"path"`
	UploadedBy  string    `json:"uploadedBy" yaml:"uploadedBy"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// RecordID returns the attachment id.
func (a Attachment) RecordID() string { return a.ID }
