package server

import (
	"net/http"
	"time"

	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// defaultUpcoming is the look-ahead of /maintenance/upcoming without ?within.
const defaultUpcoming = 7 * 24 * time.Hour

type scheduleRequest struct {
	AssetID   string `json:"assetId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	models.MaintenanceDetails
}

// scheduleUpdateRequest accepts the same date forms as scheduleRequest.
type scheduleUpdateRequest struct {
	models.MaintenancePatch
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

func (req scheduleUpdateRequest) patch() (models.MaintenancePatch, error) {
	p := req.MaintenancePatch
	for _, d := range []struct {
		in  *string
		out **time.Time
	}{{req.StartDate, &p.StartDate}, {req.EndDate, &p.EndDate}} {
		if d.in == nil {
			continue
		}
		t, err := ident.ParseTime(*d.in)
		if err != nil {
			return models.MaintenancePatch{}, err
		}
		*d.out = &t
	}
	return p, nil
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	var (
		schedules []models.MaintenanceSchedule
		err       error
	)
	if assetID := r.URL.Query().Get("assetId"); assetID != "" {
		schedules, err = s.inv.Maintenance.GetMaintenanceHistory(r.Context(), assetID)
	} else {
		schedules, err = s.inv.Maintenance.GetAllSchedules(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleUpcomingSchedules(w http.ResponseWriter, r *http.Request) {
	within := defaultUpcoming
	if v := r.URL.Query().Get("within"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "within must be a positive duration such as 24h")
			return
		}
		within = d
	}
	schedules, err := s.inv.Maintenance.UpcomingSchedules(r.Context(), within)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	m, err := s.inv.Maintenance.GetScheduleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decode(w, r, &req) {
		return
	}
	start, err := ident.ParseTime(req.StartDate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	end, err := ident.ParseTime(req.EndDate)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	m, err := s.inv.Maintenance.ScheduleMaintenance(s.ctx(r), req.AssetID, start, end, req.MaintenanceDetails)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.inv.Maintenance.UpdateMaintenanceSchedule(s.ctx(r), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	m, err := s.inv.Maintenance.CancelSchedule(s.ctx(r), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
