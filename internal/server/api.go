package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/graph"
	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/internal/metrics"
)

// defaultActor is recorded in history when a request has no X-Actor header.
const defaultActor = "api"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a service error to its status. Internal errors are logged and
// reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// decode reads a JSON object into v and writes the error response on
// failure. Unknown fields are rejected; a top-level "id" is dropped since
// ids are never client-assigned.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	delete(fields, "id")

	body, err := json.Marshal(fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// ctx returns the request context carrying the history actor.
func (s *Server) ctx(r *http.Request) context.Context {
	actor := strings.TrimSpace(r.Header.Get("X-Actor"))
	if actor == "" {
		actor = defaultActor
	}
	return inventory.WithActor(r.Context(), actor)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.inv.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	for entity, n := range map[string]int{
		"assets":         st.Assets,
		"dependencies":   st.Dependencies,
		"schedules":      st.Schedules,
		"integrations":   st.Integrations,
		"configurations": st.Configurations,
		"history":        st.HistoryEntries,
		"attachments":    st.Attachments,
	} {
		metrics.Entities.WithLabelValues(entity).Set(float64(n))
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	snap, err := s.inv.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := graph.Export(format, graph.Data{Assets: snap.Assets, Dependencies: snap.Dependencies})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", graph.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.inv.History.GetAllHistory(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAssetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entries, err := s.inv.History.GetHistoryForAsset(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no history for asset %s", id))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
