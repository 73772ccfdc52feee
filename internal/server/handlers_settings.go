package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/liftlog/internal/cloud"
	"github.com/meltforce/liftlog/internal/prefs"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.prefs.Get())
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var p prefs.Preferences
	if !decodeBody(w, r, &p) {
		return
	}
	if !p.Theme.Valid() {
		writeError(w, http.StatusBadRequest, "theme must be system, light or dark")
		return
	}
	if err := s.prefs.Set(p); err != nil {
		s.log.Error("saving preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "saving preferences failed")
		return
	}
	writeJSON(w, http.StatusOK, s.prefs.Get())
}

func (s *Server) handleKVGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok, err := s.kv.Get(r.Context(), key)
	if err != nil {
		s.log.Error("kv get", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "key not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(value)
}

func (s *Server) handleKVPut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := io.ReadAll(io.LimitReader(r.Body, cloud.MaxValueSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body failed")
		return
	}
	if err := s.kv.Set(r.Context(), key, value); err != nil {
		if errors.Is(err, cloud.ErrValueTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.log.Error("kv put", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "write failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	replaced := s.syncer.SyncFromCloud(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"replaced": replaced})
}
