package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

// ErrIncompletePayload is returned when a document lacks one of the
// collections every saved payload carries.
var ErrIncompletePayload = errors.New("incomplete payload")

// requiredKeys are the top-level members a payload document must contain.
var requiredKeys = []string{"types", "exercises", "workouts", "gymLocations", "healthExportStatus", "timerPresets"}

// Payload is the persisted document. The same encoding is written to the
// local data file and mirrored to the cloud key-value store.
type Payload struct {
	Types              []WorkoutType      `json:"types"`
	Exercises          []Exercise         `json:"exercises"`
	Workouts           []WorkoutSession   `json:"workouts"`
	GymLocations       []GymLocation      `json:"gymLocations"`
	HealthExportStatus HealthExportStatus `json:"healthExportStatus"`
	TimerPresets       []TimerPreset      `json:"timerPresets"`
	ActiveTimers       []RestTimer        `json:"activeTimers,omitempty"`
}

// DecodePayload parses a payload document. A document that lacks a required
// collection, including a bare null, fails with ErrIncompletePayload.
func DecodePayload(data []byte) (Payload, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return Payload{}, fmt.Errorf("decoding payload: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := members[key]; !ok {
			return Payload{}, fmt.Errorf("%w: missing %q", ErrIncompletePayload, key)
		}
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decoding payload: %w", err)
	}
	return p, nil
}

// Clone returns a deep copy that shares no slices, maps or pointers with p.
func (p Payload) Clone() Payload {
	out := Payload{
		Types:              cloneSlice(p.Types),
		GymLocations:       cloneSlice(p.GymLocations),
		TimerPresets:       cloneSlice(p.TimerPresets),
		ActiveTimers:       cloneSlice(p.ActiveTimers),
		HealthExportStatus: p.HealthExportStatus.Clone(),
	}
	if p.Exercises != nil {
		out.Exercises = make([]Exercise, len(p.Exercises))
		for i, e := range p.Exercises {
			out.Exercises[i] = e.Clone()
		}
	}
	if p.Workouts != nil {
		out.Workouts = make([]WorkoutSession, len(p.Workouts))
		for i, w := range p.Workouts {
			out.Workouts[i] = w.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the status.
func (h HealthExportStatus) Clone() HealthExportStatus {
	h.LastExportedAt = clonePtr(h.LastExportedAt)
	return h
}

// Clone returns a deep copy of the exercise.
func (e Exercise) Clone() Exercise {
	e.DefaultWeight = clonePtr(e.DefaultWeight)
	e.DefaultReps = clonePtr(e.DefaultReps)
	return e
}

// Clone returns a deep copy of the set.
func (s SetEntry) Clone() SetEntry {
	s.RPE = clonePtr(s.RPE)
	s.Notes = clonePtr(s.Notes)
	s.CustomFields = maps.Clone(s.CustomFields)
	return s
}

// Clone returns a deep copy of the entry and its sets.
func (e ExerciseEntry) Clone() ExerciseEntry {
	e.Exercise = e.Exercise.Clone()
	e.CustomFields = maps.Clone(e.CustomFields)
	if e.Sets != nil {
		sets := make([]SetEntry, len(e.Sets))
		for i, s := range e.Sets {
			sets[i] = s.Clone()
		}
		e.Sets = sets
	}
	return e
}

// Clone returns a deep copy of the session.
func (w WorkoutSession) Clone() WorkoutSession {
	w.EndTime = clonePtr(w.EndTime)
	w.GymLocation = clonePtr(w.GymLocation)
	if w.Exercises != nil {
		entries := make([]ExerciseEntry, len(w.Exercises))
		for i, e := range w.Exercises {
			entries[i] = e.Clone()
		}
		w.Exercises = entries
	}
	return w
}

// Duration returns the session length and whether the session has ended.
func (w WorkoutSession) Duration() (time.Duration, bool) {
	if w.EndTime == nil {
		return 0, false
	}
	return w.EndTime.Sub(w.StartTime), true
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
