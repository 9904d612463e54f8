package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/pkg/models"
)

func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	var (
		configs []models.Configuration
		err     error
	)
	if assetID := r.URL.Query().Get("assetId"); assetID != "" {
		configs, err = s.inv.Configurations.GetConfigurationsForAsset(r.Context(), assetID)
	} else {
		configs, err = s.inv.Configurations.GetAllConfigurations(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	c, err := s.inv.Configurations.GetConfigurationByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var in models.ConfigurationInput
	if !decode(w, r, &in) {
		return
	}
	c, err := s.inv.Configurations.CreateConfiguration(s.ctx(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var p models.ConfigurationPatch
	if !decode(w, r, &p) {
		return
	}
	c, err := s.inv.Configurations.UpdateConfiguration(s.ctx(r), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	if err := s.inv.Configurations.DeleteConfiguration(s.ctx(r), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type complianceRequest struct {
	Status models.ComplianceStatus `json:"status"`
}

func (s *Server) handleComplianceCheck(w http.ResponseWriter, r *http.Request) {
	var req complianceRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.inv.Configurations.RecordComplianceCheck(s.ctx(r), r.PathValue("id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	var (
		atts []models.Attachment
		err  error
	)
	if assetID := r.URL.Query().Get("assetId"); assetID != "" {
		atts, err = s.inv.Attachments.GetAttachmentsForAsset(r.Context(), assetID)
	} else {
		atts, err = s.inv.Attachments.GetAllAttachments(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, atts)
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	a, err := s.inv.Attachments.GetAttachmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAttachmentContent(w http.ResponseWriter, r *http.Request) {
	a, rc, err := s.inv.Attachments.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer rc.Close() //nolint:errcheck

	ct := a.Type
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(a.Name))
	if a.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(a.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("streaming attachment failed", "attachment_id", a.ID, "error", err)
	}
}

// handleCreateAttachment accepts either JSON metadata for content stored
// elsewhere or a multipart upload with a "file" part.
func (s *Server) handleCreateAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := s.ctx(r)
	if !isMultipart(r) {
		var in models.AttachmentInput
		if !decode(w, r, &in) {
			return
		}
		if in.UploadedBy == "" {
			in.UploadedBy = inventory.Actor(ctx)
		}
		a, err := s.inv.Attachments.CreateAttachment(ctx, in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
		return
	}

	if !s.inv.Attachments.CanUpload() {
		writeError(w, http.StatusNotImplemented, "attachment uploads are not enabled")
		return
	}
	if err := r.ParseMultipartForm(maxJSONBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close() //nolint:errcheck

	in := models.AttachmentInput{
		AssetID:     r.FormValue("assetId"),
		Name:        header.Filename,
		Type:        header.Header.Get("Content-Type"),
		UploadedBy:  inventory.Actor(ctx),
		Description: r.FormValue("description"),
	}
	if name := r.FormValue("name"); name != "" {
		in.Name = name
	}

	a, err := s.inv.Attachments.Upload(ctx, in, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := s.inv.Attachments.DeleteAttachment(s.ctx(r), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
