// Package store holds the in-memory workout state and every mutation on it.
//
// Lookups by id that miss are silent: the operation does nothing, emits no
// change, and reports ok=false where a result is returned.
package store

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

// Store owns all collections. Methods are safe for concurrent use; callers
// observe a single logical mutator.
type Store struct {
	mu           sync.Mutex
	workoutTypes []models.WorkoutType
	exercises    []models.Exercise
	workouts     []models.WorkoutSession
	gyms         []models.GymLocation
	timerPresets []models.TimerPreset
	activeTimers []models.RestTimer
	health       models.HealthExportStatus

	now  func() time.Time
	log  *slog.Logger
	subs subscribers
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates an empty store with the default timer presets.
func New(opts ...Option) *Store {
	s := &Store{
		timerPresets: models.DefaultTimerPresets(),
		now:          time.Now,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// StartWorkout puts a new ongoing session at the front of the list. Nothing
// stops several sessions from being ongoing at once.
func (s *Store) StartWorkout(t models.WorkoutType, at time.Time, gym *models.GymLocation) models.WorkoutSession {
	session := models.WorkoutSession{
		ID:          uuid.New(),
		Type:        t,
		StartTime:   at,
		IsOngoing:   true,
		GymLocation: cloneGym(gym),
		CreatedAt:   at,
		UpdatedAt:   at,
	}

	s.mu.Lock()
	s.workouts = slices.Insert(s.workouts, 0, session)
	s.mu.Unlock()

	s.emit(KindWorkouts)
	return session.Clone()
}

// AddWorkoutType appends a type. Duplicate names are allowed.
func (s *Store) AddWorkoutType(name string) models.WorkoutType {
	t := models.WorkoutType{ID: uuid.New(), Name: name}

	s.mu.Lock()
	s.workoutTypes = append(s.workoutTypes, t)
	s.mu.Unlock()

	s.emit(KindWorkoutTypes)
	return t
}

// AddExercise appends a catalog exercise belonging to t.
func (s *Store) AddExercise(name string, t models.WorkoutType) models.Exercise {
	ex := models.Exercise{ID: uuid.New(), Name: name, WorkoutTypeID: t.ID}

	s.mu.Lock()
	s.exercises = append(s.exercises, ex)
	s.mu.Unlock()

	s.emit(KindExercises)
	return ex
}

// AddGymLocation appends a gym. A non-positive radius uses the default.
func (s *Store) AddGymLocation(label, address string, lat, lon, radius float64) models.GymLocation {
	if radius <= 0 {
		radius = models.DefaultGymRadius
	}
	gym := models.GymLocation{
		ID:        uuid.New(),
		Label:     label,
		Address:   address,
		Latitude:  lat,
		Longitude: lon,
		Radius:    radius,
	}

	s.mu.Lock()
	s.gyms = append(s.gyms, gym)
	s.mu.Unlock()

	s.emit(KindGyms)
	return gym
}

// AddTimer starts a rest timer expiring duration from now.
func (s *Store) AddTimer(label string, duration time.Duration) models.RestTimer {
	timer := models.RestTimer{
		ID:        uuid.New(),
		Label:     label,
		Duration:  duration.Seconds(),
		ExpiresAt: s.now().Add(duration),
	}

	s.mu.Lock()
	s.activeTimers = append(s.activeTimers, timer)
	s.mu.Unlock()

	s.emit(KindActiveTimers)
	return timer
}

// RemoveExpiredTimers drops timers whose expiry has passed. Nothing schedules
// this; callers run it periodically. It returns the number removed.
func (s *Store) RemoveExpiredTimers() int {
	now := s.now()

	s.mu.Lock()
	before := len(s.activeTimers)
	s.activeTimers = slices.DeleteFunc(s.activeTimers, func(t models.RestTimer) bool {
		return t.ExpiresAt.Before(now)
	})
	removed := before - len(s.activeTimers)
	s.mu.Unlock()

	if removed > 0 {
		s.emit(KindActiveTimers)
	}
	return removed
}

// MarkExportedToHealth records that count workouts were written to the
// health data store. Negative counts are ignored so the total never drops.
func (s *Store) MarkExportedToHealth(count int) models.HealthExportStatus {
	now := s.now()

	s.mu.Lock()
	s.health.LastExportedAt = &now
	if count > 0 {
		s.health.WorkoutsExported += count
	}
	status := s.health.Clone()
	s.mu.Unlock()

	s.emit(KindHealthExport)
	return status
}

// SetTimerPresets replaces the preset list.
func (s *Store) SetTimerPresets(presets []models.TimerPreset) []models.TimerPreset {
	presets = slices.Clone(presets)
	for i := range presets {
		if presets[i].ID == uuid.Nil {
			presets[i].ID = uuid.New()
		}
	}

	s.mu.Lock()
	s.timerPresets = presets
	s.mu.Unlock()

	s.emit(KindTimerPresets)
	return slices.Clone(presets)
}

// Snapshot returns a deep copy of the full persisted state.
func (s *Store) Snapshot() models.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Payload{
		Types:              s.workoutTypes,
		Exercises:          s.exercises,
		Workouts:           s.workouts,
		GymLocations:       s.gyms,
		HealthExportStatus: s.health,
		TimerPresets:       s.timerPresets,
		ActiveTimers:       s.activeTimers,
	}.Clone()
}

// Replace swaps in every collection from p. Used when loading from disk or
// taking the cloud copy.
func (s *Store) Replace(p models.Payload) {
	p = p.Clone()

	s.mu.Lock()
	s.workoutTypes = p.Types
	s.exercises = p.Exercises
	s.workouts = p.Workouts
	s.gyms = p.GymLocations
	s.health = p.HealthExportStatus
	s.timerPresets = p.TimerPresets
	s.activeTimers = p.ActiveTimers
	s.mu.Unlock()

	s.emit(KindReplaced)
}

// WorkoutTypes returns a copy of the type list.
func (s *Store) WorkoutTypes() []models.WorkoutType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.workoutTypes)
}

// Exercises returns a copy of the exercise catalog.
func (s *Store) Exercises() []models.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Exercise, len(s.exercises))
	for i, e := range s.exercises {
		out[i] = e.Clone()
	}
	return out
}

// Workouts returns a deep copy of all sessions, newest first.
func (s *Store) Workouts() []models.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSessions(s.workouts)
}

// Workout returns the session with id.
func (s *Store) Workout(id uuid.UUID) (models.WorkoutSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.WorkoutSession{}, false
	}
	return s.workouts[i].Clone(), true
}

// GymLocations returns a copy of the saved gyms.
func (s *Store) GymLocations() []models.GymLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.gyms)
}

// TimerPresets returns a copy of the preset list.
func (s *Store) TimerPresets() []models.TimerPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.timerPresets)
}

// ActiveTimers returns a copy of the running timers.
func (s *Store) ActiveTimers() []models.RestTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.activeTimers)
}

// HealthExportStatus returns the export counter.
func (s *Store) HealthExportStatus() models.HealthExportStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health.Clone()
}

func cloneSessions(in []models.WorkoutSession) []models.WorkoutSession {
	out := make([]models.WorkoutSession, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}

func cloneGym(g *models.GymLocation) *models.GymLocation {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
