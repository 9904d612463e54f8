// Package apperr defines the error kinds shared by the inventory services
// and their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindConfiguration
	KindCloudIntegration
	KindInvalidOperation
)

// String returns the conventional name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFoundError"
	case KindConfiguration:
		return "ConfigurationError"
	case KindCloudIntegration:
		return "CloudIntegrationError"
	case KindInvalidOperation:
		return "InvalidOperationError"
	default:
		return "Error"
	}
}

// Resource names used in NotFound errors.
const (
	ResourceAsset               = "asset"
	ResourceDependency          = "dependency"
	ResourceMaintenanceSchedule = "maintenance schedule"
	ResourceIntegration         = "integration"
	ResourceConfiguration       = "configuration"
	ResourceAttachment          = "attachment"
)

// Error is the single domain error type. Kind identifies the failure class,
// Resource and ID identify the entity involved when there is one.
type Error struct {
	Kind     Kind
	Resource string
	ID       string
	Message  string
	Err      error
}

// Sentinels for errors.Is. A sentinel with an empty Resource matches every
// error of its kind.
var (
	ErrNotFound                    = &Error{Kind: KindNotFound}
	ErrAssetNotFound               = &Error{Kind: KindNotFound, Resource: ResourceAsset}
	ErrMaintenanceScheduleNotFound = &Error{Kind: KindNotFound, Resource: ResourceMaintenanceSchedule}
	ErrConfiguration               = &Error{Kind: KindConfiguration}
	ErrCloudIntegration            = &Error{Kind: KindCloudIntegration}
	ErrInvalidOperation            = &Error{Kind: KindInvalidOperation}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind (and resource,
// when the sentinel names one).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Resource != "" && t.Resource != e.Resource {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

// NotFound reports that the entity with the given id does not exist.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: resource,
		ID:       id,
		Message:  fmt.Sprintf("%s %s not found", resource, id),
	}
}

// AssetNotFound is the asset-specific NotFound error.
func AssetNotFound(id string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: ResourceAsset,
		ID:       id,
		Message:  fmt.Sprintf("Asset with ID %s not found", id),
	}
}

// MaintenanceScheduleNotFound is the schedule-specific NotFound error.
func MaintenanceScheduleNotFound(id string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: ResourceMaintenanceSchedule,
		ID:       id,
		Message:  fmt.Sprintf("Maintenance schedule with ID %s not found", id),
	}
}

// Configuration reports missing or invalid input.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// CloudIntegration reports an integration-level failure for the provider.
func CloudIntegration(provider, details string) *Error {
	return &Error{
		Kind:    KindCloudIntegration,
		Message: fmt.Sprintf("Failed to integrate with %s: %s", provider, details),
	}
}

// IntegrationNotFound is the CloudIntegration error raised when an
// integration id is unknown.
func IntegrationNotFound(id string) *Error {
	e := CloudIntegration("cloud provider", fmt.Sprintf("integration %s not found", id))
	e.Resource = ResourceIntegration
	e.ID = id
	return e
}

// InvalidOperation reports an operation attempted in an invalid state.
func InvalidOperation(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConfiguration:
		return http.StatusBadRequest
	case KindInvalidOperation:
		return http.StatusConflict
	case KindCloudIntegration:
		if e.Resource != "" {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
