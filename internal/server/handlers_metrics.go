package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/meltforce/liftlog/internal/export"
	"github.com/meltforce/liftlog/internal/stats"
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.SnapshotMetrics())
}

func (s *Server) handlePR(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	best, found := s.store.PR(id)
	if !found {
		writeError(w, http.StatusNotFound, "no sets logged for exercise")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exerciseID": id, "weight": best})
}

func (s *Server) handleOneRepMax(w http.ResponseWriter, r *http.Request) {
	weight, err := strconv.ParseFloat(r.URL.Query().Get("weight"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "weight parameter required")
		return
	}
	reps, err := strconv.Atoi(r.URL.Query().Get("reps"))
	if err != nil || reps < 1 {
		writeError(w, http.StatusBadRequest, "reps must be a positive integer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"estimatedOneRepMax": stats.EstimatedOneRepMax(weight, reps),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.csv"`)
	if err := export.WriteCSV(w, s.store.Workouts(), time.Local); err != nil {
		s.log.Error("csv export", "error", err)
	}
}

func (s *Server) handleExportFile(w http.ResponseWriter, r *http.Request) {
	if s.exportPath == "" {
		writeError(w, http.StatusNotFound, "file export not configured")
		return
	}
	if err := export.WriteFile(s.exportPath, s.store.Workouts(), time.Local); err != nil {
		s.log.Error("csv export", "path", s.exportPath, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": s.exportPath})
}

type healthExportedRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleHealthExported(w http.ResponseWriter, r *http.Request) {
	var req healthExportedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.store.MarkExportedToHealth(req.Count))
}
