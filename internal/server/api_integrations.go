package server

import (
	"net/http"

	"github.com/matijazezelj/assetutil/pkg/models"
)

// Integrations leave the API with their secrets masked.

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := s.inv.Integrations.ListIntegrations(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]models.Integration, 0, len(list))
	for _, integ := range list {
		out = append(out, integ.Redacted())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	integ, err := s.inv.Integrations.GetIntegration(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, integ.Redacted())
}

func (s *Server) handleIntegrateAWS(w http.ResponseWriter, r *http.Request) {
	var cfg models.AWSConfig
	if !decode(w, r, &cfg) {
		return
	}
	integ, err := s.inv.Integrations.IntegrateAWS(s.ctx(r), cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, integ.Redacted())
}

func (s *Server) handleIntegrateAzure(w http.ResponseWriter, r *http.Request) {
	var cfg models.AzureConfig
	if !decode(w, r, &cfg) {
		return
	}
	integ, err := s.inv.Integrations.IntegrateAzure(s.ctx(r), cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, integ.Redacted())
}

type validateRequest struct {
	Provider    models.CloudProvider `json:"provider"`
	Credentials models.Credentials   `json:"credentials"`
}

func (s *Server) handleValidateCredentials(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.inv.Integrations.ValidateCredentials(req.Provider, req.Credentials); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) handleVerifyIntegration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.inv.Integrations.VerifyIntegration(s.ctx(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "verified": true})
}

func (s *Server) handleIntegrationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.IntegrationStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	integ, err := s.inv.Integrations.SetIntegrationStatus(s.ctx(r), r.PathValue("id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, integ.Redacted())
}

func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	if err := s.inv.Integrations.RemoveIntegration(s.ctx(r), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
