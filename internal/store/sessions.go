package store

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

// AddExerciseToWorkout appends an entry for ex with no sets.
func (s *Store) AddExerciseToWorkout(sessionID uuid.UUID, ex models.Exercise) (models.ExerciseEntry, bool) {
	entry := models.ExerciseEntry{ID: uuid.New(), Exercise: ex.Clone(), Sets: []models.SetEntry{}}
	ok := s.mutateSession(sessionID, func(w *models.WorkoutSession) bool {
		w.Exercises = append(w.Exercises, entry)
		return true
	})
	if !ok {
		return models.ExerciseEntry{}, false
	}
	return entry.Clone(), true
}

// AddSet appends a set to the entry for exerciseID in the session.
func (s *Store) AddSet(sessionID, exerciseID uuid.UUID, weight float64, reps int, customFields map[string]string) (models.SetEntry, bool) {
	set := models.SetEntry{
		ID:           uuid.New(),
		Weight:       weight,
		Reps:         reps,
		CustomFields: cloneFields(customFields),
	}
	ok := s.mutateEntry(sessionID, exerciseID, func(e *models.ExerciseEntry) bool {
		e.Sets = append(e.Sets, set)
		return true
	})
	if !ok {
		return models.SetEntry{}, false
	}
	return set.Clone(), true
}

// SetUpdate holds the values written by UpdateSet.
type SetUpdate struct {
	Weight       float64
	Reps         int
	RPE          *float64
	Notes        *string
	CustomFields map[string]string
}

// UpdateSet overwrites weight, reps, RPE, notes and custom fields of a set.
func (s *Store) UpdateSet(sessionID, exerciseID, setID uuid.UUID, u SetUpdate) bool {
	return s.mutateEntry(sessionID, exerciseID, func(e *models.ExerciseEntry) bool {
		i := slices.IndexFunc(e.Sets, func(set models.SetEntry) bool { return set.ID == setID })
		if i < 0 {
			return false
		}
		set := &e.Sets[i]
		set.Weight = u.Weight
		set.Reps = u.Reps
		set.RPE = clonePtr(u.RPE)
		set.Notes = clonePtr(u.Notes)
		set.CustomFields = cloneFields(u.CustomFields)
		return true
	})
}

// QuickAddSets appends count copies of template. The copies keep the
// template's id.
func (s *Store) QuickAddSets(sessionID, exerciseID uuid.UUID, template models.SetEntry, count int) bool {
	return s.mutateEntry(sessionID, exerciseID, func(e *models.ExerciseEntry) bool {
		for range count {
			e.Sets = append(e.Sets, template.Clone())
		}
		return true
	})
}

// CloseWorkout ends the session.
func (s *Store) CloseWorkout(id uuid.UUID, endTime time.Time, notes string) bool {
	return s.mutateSession(id, func(w *models.WorkoutSession) bool {
		w.EndTime = &endTime
		w.IsOngoing = false
		w.Notes = notes
		return true
	})
}

// DeleteWorkout removes the session. Deleting an unknown id does nothing.
func (s *Store) DeleteWorkout(id uuid.UUID) bool {
	s.mu.Lock()
	before := len(s.workouts)
	s.workouts = slices.DeleteFunc(s.workouts, func(w models.WorkoutSession) bool { return w.ID == id })
	removed := len(s.workouts) != before
	s.mu.Unlock()

	if removed {
		s.emit(KindWorkouts)
	}
	return removed
}

// AddCustomField appends "key: value" as a new line of the session notes.
// Session-level fields live in the notes text, not in a map.
func (s *Store) AddCustomField(sessionID uuid.UUID, key, value string) bool {
	return s.mutateSession(sessionID, func(w *models.WorkoutSession) bool {
		w.Notes += "\n" + key + ": " + value
		return true
	})
}

// mutateSession runs fn on the session with id under the lock. When fn
// reports a change the session's updatedAt is stamped and observers are told.
func (s *Store) mutateSession(id uuid.UUID, fn func(*models.WorkoutSession) bool) bool {
	now := s.now()

	s.mu.Lock()
	i := s.indexOf(id)
	changed := i >= 0 && fn(&s.workouts[i])
	if changed {
		s.workouts[i].UpdatedAt = now
	}
	s.mu.Unlock()

	if changed {
		s.emit(KindWorkouts)
	}
	return changed
}

func (s *Store) mutateEntry(sessionID, exerciseID uuid.UUID, fn func(*models.ExerciseEntry) bool) bool {
	return s.mutateSession(sessionID, func(w *models.WorkoutSession) bool {
		j := slices.IndexFunc(w.Exercises, func(e models.ExerciseEntry) bool { return e.Exercise.ID == exerciseID })
		if j < 0 {
			return false
		}
		return fn(&w.Exercises[j])
	})
}

func (s *Store) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.workouts, func(w models.WorkoutSession) bool { return w.ID == id })
}

func cloneFields(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
