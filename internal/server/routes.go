package server

import (
	"net/http"

	"github.com/matijazezelj/assetutil/internal/metrics"
)

// RegisterRoutes registers all API routes on the given mux. In read-only
// mode only GET routes are registered.
func RegisterRoutes(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/assets", s.handleListAssets)
	mux.HandleFunc("GET /api/v1/assets/{id}", s.handleGetAsset)
	mux.HandleFunc("GET /api/v1/assets/{id}/dependencies", s.handleAssetDependencies)
	mux.HandleFunc("GET /api/v1/assets/{id}/maintenance", s.handleAssetMaintenance)
	mux.HandleFunc("GET /api/v1/assets/{id}/history", s.handleAssetHistory)
	mux.HandleFunc("GET /api/v1/assets/{id}/configurations", s.handleAssetConfigurations)
	mux.HandleFunc("GET /api/v1/assets/{id}/attachments", s.handleAssetAttachments)

	mux.HandleFunc("GET /api/v1/dependencies", s.handleListDependencies)
	mux.HandleFunc("GET /api/v1/dependencies/{id}", s.handleGetDependency)

	mux.HandleFunc("GET /api/v1/maintenance", s.handleListSchedules)
	mux.HandleFunc("GET /api/v1/maintenance/upcoming", s.handleUpcomingSchedules)
	mux.HandleFunc("GET /api/v1/maintenance/{id}", s.handleGetSchedule)

	mux.HandleFunc("GET /api/v1/integrations", s.handleListIntegrations)
	mux.HandleFunc("GET /api/v1/integrations/{id}", s.handleGetIntegration)

	mux.HandleFunc("GET /api/v1/configurations", s.handleListConfigurations)
	mux.HandleFunc("GET /api/v1/configurations/{id}", s.handleGetConfiguration)

	mux.HandleFunc("GET /api/v1/history", s.handleListHistory)

	mux.HandleFunc("GET /api/v1/attachments", s.handleListAttachments)
	mux.HandleFunc("GET /api/v1/attachments/{id}", s.handleGetAttachment)
	mux.HandleFunc("GET /api/v1/attachments/{id}/content", s.handleAttachmentContent)

	mux.HandleFunc("GET /api/v1/export/{format}", s.handleExport)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)

	if s.opts.ReadOnly {
		return
	}

	mux.HandleFunc("POST /api/v1/assets", s.handleCreateAsset)
	mux.HandleFunc("PUT /api/v1/assets/{id}", s.handleUpdateAsset)
	mux.HandleFunc("PATCH /api/v1/assets/{id}", s.handleUpdateAsset)
	mux.HandleFunc("DELETE /api/v1/assets/{id}", s.handleDeleteAsset)

	mux.HandleFunc("POST /api/v1/dependencies", s.handleCreateDependency)
	mux.HandleFunc("PUT /api/v1/dependencies/{id}", s.handleUpdateDependency)
	mux.HandleFunc("DELETE /api/v1/dependencies/{id}", s.handleDeleteDependency)

	mux.HandleFunc("POST /api/v1/maintenance", s.handleScheduleMaintenance)
	mux.HandleFunc("PUT /api/v1/maintenance/{id}", s.handleUpdateSchedule)
	mux.HandleFunc("POST /api/v1/maintenance/{id}/cancel", s.handleCancelSchedule)

	mux.HandleFunc("POST /api/v1/integrations/aws", s.handleIntegrateAWS)
	mux.HandleFunc("POST /api/v1/integrations/azure", s.handleIntegrateAzure)
	mux.HandleFunc("POST /api/v1/integrations/validate", s.handleValidateCredentials)
	mux.HandleFunc("POST /api/v1/integrations/{id}/verify", s.handleVerifyIntegration)
	mux.HandleFunc("PUT /api/v1/integrations/{id}/status", s.handleIntegrationStatus)
	mux.HandleFunc("DELETE /api/v1/integrations/{id}", s.handleDeleteIntegration)

	mux.HandleFunc("POST /api/v1/configurations", s.handleCreateConfiguration)
	mux.HandleFunc("PUT /api/v1/configurations/{id}", s.handleUpdateConfiguration)
	mux.HandleFunc("DELETE /api/v1/configurations/{id}", s.handleDeleteConfiguration)
	mux.HandleFunc("POST /api/v1/configurations/{id}/compliance", s.handleComplianceCheck)

	mux.HandleFunc("POST /api/v1/attachments", s.handleCreateAttachment)
	mux.HandleFunc("DELETE /api/v1/attachments/{id}", s.handleDeleteAttachment)
}
