package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Workouts())
}

type startWorkoutRequest struct {
	TypeID    uuid.UUID  `json:"typeID"`
	StartTime *time.Time `json:"startTime,omitempty"`
	GymID     *uuid.UUID `json:"gymID,omitempty"`
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req startWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wt, ok := findByID(s.store.WorkoutTypes(), req.TypeID, func(t models.WorkoutType) uuid.UUID { return t.ID })
	if !ok {
		writeError(w, http.StatusNotFound, "workout type not found")
		return
	}

	var gym *models.GymLocation
	if req.GymID != nil {
		g, ok := findByID(s.store.GymLocations(), *req.GymID, func(g models.GymLocation) uuid.UUID { return g.ID })
		if !ok {
			writeError(w, http.StatusNotFound, "gym not found")
			return
		}
		gym = &g
	}

	start := s.store.Now()
	if req.StartTime != nil {
		start = *req.StartTime
	}
	writeJSON(w, http.StatusCreated, s.store.StartWorkout(wt, start, gym))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	session, found := s.store.Workout(id)
	if !found {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	// Deleting twice is the same as deleting once.
	s.store.DeleteWorkout(id)
	w.WriteHeader(http.StatusNoContent)
}

type closeWorkoutRequest struct {
	EndTime *time.Time `json:"endTime,omitempty"`
	Notes   string     `json:"notes"`
}

func (s *Server) handleCloseWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req closeWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	end := s.store.Now()
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if !s.store.CloseWorkout(id, end, req.Notes) {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	s.writeWorkout(w, id)
}

type customFieldRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleAddCustomField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req customFieldRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if !s.store.AddCustomField(id, req.Key, req.Value) {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	s.writeWorkout(w, id)
}

type addExerciseToWorkoutRequest struct {
	ExerciseID uuid.UUID `json:"exerciseID"`
}

func (s *Server) handleAddExerciseToWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req addExerciseToWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ex, found := findByID(s.store.Exercises(), req.ExerciseID, func(e models.Exercise) uuid.UUID { return e.ID })
	if !found {
		writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	entry, ok := s.store.AddExerciseToWorkout(id, ex)
	if !ok {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type setRequest struct {
	Weight       float64           `json:"weight"`
	Reps         int               `json:"reps"`
	RPE          *float64          `json:"rpe,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
	Count        int               `json:"count,omitempty"`
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	sessionID, exerciseID, ok := parseSessionExercise(w, r)
	if !ok {
		return
	}
	var req setRequest
	if !decodeBody(w, r, &req) {
		return
	}
	set, ok := s.store.AddSet(sessionID, exerciseID, req.Weight, req.Reps, req.CustomFields)
	if !ok {
		writeError(w, http.StatusNotFound, "workout or exercise not found")
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleQuickAddSets(w http.ResponseWriter, r *http.Request) {
	sessionID, exerciseID, ok := parseSessionExercise(w, r)
	if !ok {
		return
	}
	var req setRequest
	if !decodeBody(w, r, &req) {
		return
	}
	template := models.SetEntry{
		ID:           uuid.New(),
		Weight:       req.Weight,
		Reps:         req.Reps,
		RPE:          req.RPE,
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
	}
	if template.CustomFields == nil {
		template.CustomFields = map[string]string{}
	}
	if !s.store.QuickAddSets(sessionID, exerciseID, template, req.Count) {
		writeError(w, http.StatusNotFound, "workout or exercise not found")
		return
	}
	s.writeWorkout(w, sessionID)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	sessionID, exerciseID, ok := parseSessionExercise(w, r)
	if !ok {
		return
	}
	setID, ok := parseID(w, r, "setID")
	if !ok {
		return
	}
	var req setRequest
	if !decodeBody(w, r, &req) {
		return
	}
	update := store.SetUpdate{
		Weight:       req.Weight,
		Reps:         req.Reps,
		RPE:          req.RPE,
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
	}
	if !s.store.UpdateSet(sessionID, exerciseID, setID, update) {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}
	s.writeWorkout(w, sessionID)
}

func (s *Server) writeWorkout(w http.ResponseWriter, id uuid.UUID) {
	session, ok := s.store.Workout(id)
	if !ok {
		// deleted concurrently
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func parseSessionExercise(w http.ResponseWriter, r *http.Request) (sessionID, exerciseID uuid.UUID, ok bool) {
	if sessionID, ok = parseID(w, r, "id"); !ok {
		return
	}
	exerciseID, ok = parseID(w, r, "exerciseID")
	return
}

func findByID[T any](items []T, id uuid.UUID, key func(T) uuid.UUID) (T, bool) {
	for _, item := range items {
		if key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
