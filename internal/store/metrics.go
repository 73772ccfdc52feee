package store

import (
	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/stats"
)

// StreakCount returns the current run of consecutive training days.
func (s *Store) StreakCount() int {
	now := s.now()
	return stats.StreakCount(s.Workouts(), now.Location())
}

// WorkoutsLast counts sessions started within the trailing number of days.
func (s *Store) WorkoutsLast(days int) int {
	return stats.WorkoutsLast(s.Workouts(), days, s.now())
}

// PR returns the heaviest weight logged for the exercise.
func (s *Store) PR(exerciseID uuid.UUID) (float64, bool) {
	return stats.PR(s.Workouts(), exerciseID)
}

// PRMap returns the best weight per catalog exercise that has sets.
func (s *Store) PRMap() map[uuid.UUID]float64 {
	return stats.PRMap(s.Workouts(), s.Exercises())
}

// AverageDurationMinutes is the mean length of completed sessions.
func (s *Store) AverageDurationMinutes() float64 {
	return stats.AverageDurationMinutes(s.Workouts())
}

// SnapshotMetrics bundles the derived metrics stamped with the current time.
func (s *Store) SnapshotMetrics() models.MetricSnapshot {
	return stats.Snapshot(s.Workouts(), s.Exercises(), s.now())
}
