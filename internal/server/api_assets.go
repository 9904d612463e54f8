package server

import (
	"net/http"

	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/pkg/models"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assets, err := s.inv.Assets.ListAssets(r.Context(), inventory.AssetFilter{
		Type:     q.Get("type"),
		Status:   models.AssetStatus(q.Get("status")),
		Provider: models.Provider(q.Get("provider")),
		Location: q.Get("location"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var in models.AssetInput
	if !decode(w, r, &in) {
		return
	}
	a, err := s.inv.Assets.CreateAsset(s.ctx(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, err := s.inv.Assets.GetAssetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var p models.AssetPatch
	if !decode(w, r, &p) {
		return
	}
	a, err := s.inv.Assets.UpdateAsset(s.ctx(r), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleDeleteAsset removes the asset and, unless ?cascade=false, the
// records that reference it.
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	cascade := r.URL.Query().Get("cascade") != "false"
	if _, err := s.inv.RemoveAsset(s.ctx(r), r.PathValue("id"), cascade); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssetDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := s.inv.Dependencies.GetDependenciesForAsset(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

func (s *Server) handleAssetMaintenance(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.inv.Maintenance.GetMaintenanceHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleAssetConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := s.inv.Configurations.GetConfigurationsForAsset(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleAssetAttachments(w http.ResponseWriter, r *http.Request) {
	atts, err := s.inv.Attachments.GetAttachmentsForAsset(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, atts)
}

func (s *Server) handleListDependencies(w http.ResponseWriter, r *http.Request) {
	var (
		deps []models.Dependency
		err  error
	)
	if assetID := r.URL.Query().Get("assetId"); assetID != "" {
		deps, err = s.inv.Dependencies.GetDependenciesForAsset(r.Context(), assetID)
	} else {
		deps, err = s.inv.Dependencies.GetAllDependencies(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

func (s *Server) handleCreateDependency(w http.ResponseWriter, r *http.Request) {
	var in models.DependencyInput
	if !decode(w, r, &in) {
		return
	}
	d, err := s.inv.Dependencies.AddDependency(s.ctx(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetDependency(w http.ResponseWriter, r *http.Request) {
	d, err := s.inv.Dependencies.GetDependencyByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDependency(w http.ResponseWriter, r *http.Request) {
	var p models.DependencyPatch
	if !decode(w, r, &p) {
		return
	}
	d, err := s.inv.Dependencies.UpdateDependency(s.ctx(r), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDependency(w http.ResponseWriter, r *http.Request) {
	if err := s.inv.Dependencies.RemoveDependency(s.ctx(r), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
