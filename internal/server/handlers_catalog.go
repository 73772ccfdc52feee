package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.WorkoutTypes())
}

func (s *Server) handleAddType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.AddWorkoutType(req.Name))
}

type addExerciseRequest struct {
	Name          string    `json:"name"`
	WorkoutTypeID uuid.UUID `json:"workoutTypeID"`
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Exercises())
}

// The type id is not checked against the type list.
func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	wt, ok := findByID(s.store.WorkoutTypes(), req.WorkoutTypeID, func(t models.WorkoutType) uuid.UUID { return t.ID })
	if !ok {
		wt = models.WorkoutType{ID: req.WorkoutTypeID}
	}
	writeJSON(w, http.StatusCreated, s.store.AddExercise(req.Name, wt))
}

type addGymRequest struct {
	Label     string  `json:"label"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

func (s *Server) handleListGyms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.GymLocations())
}

func (s *Server) handleAddGym(w http.ResponseWriter, r *http.Request) {
	var req addGymRequest
	if !decodeBody(w, r, &req) {
		return
	}
	gym := s.store.AddGymLocation(req.Label, req.Address, req.Latitude, req.Longitude, req.Radius)
	writeJSON(w, http.StatusCreated, gym)
}

type addTimerRequest struct {
	Label   string  `json:"label"`
	Seconds float64 `json:"seconds"`
}

func (s *Server) handleListTimers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ActiveTimers())
}

func (s *Server) handleAddTimer(w http.ResponseWriter, r *http.Request) {
	var req addTimerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Seconds <= 0 {
		writeError(w, http.StatusBadRequest, "seconds must be positive")
		return
	}
	d := time.Duration(req.Seconds * float64(time.Second))
	writeJSON(w, http.StatusCreated, s.store.AddTimer(req.Label, d))
}

func (s *Server) handleRemoveExpiredTimers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"removed": s.store.RemoveExpiredTimers()})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.TimerPresets())
}

func (s *Server) handleSetPresets(w http.ResponseWriter, r *http.Request) {
	var presets []models.TimerPreset
	if !decodeBody(w, r, &presets) {
		return
	}
	for _, p := range presets {
		if p.Seconds <= 0 {
			writeError(w, http.StatusBadRequest, "preset seconds must be positive")
			return
		}
	}
	writeJSON(w, http.StatusOK, s.store.SetTimerPresets(presets))
}
