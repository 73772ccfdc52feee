// Package stats computes derived training metrics from recorded sessions.
// Every function is pure: results are recomputed from the inputs on each call.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

// StreakCount returns the number of consecutive calendar days, counting back
// from the day of the most recent session, that have at least one session.
// Several sessions on one day count once. Days are evaluated in loc.
func StreakCount(sessions []models.WorkoutSession, loc *time.Location) int {
	if len(sessions) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.Local
	}

	starts := make([]time.Time, len(sessions))
	for i, s := range sessions {
		starts[i] = s.StartTime
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].After(starts[j]) })

	streak := 1
	current := startOfDay(starts[0], loc)
	for _, t := range starts[1:] {
		day := startOfDay(t, loc)
		prev := current.AddDate(0, 0, -1)
		switch {
		case day.Equal(prev):
			streak++
			current = day
		case day.Before(prev):
			return streak
		}
		// same day as current: already counted
	}
	return streak
}

// WorkoutsLast counts sessions that started at or after now minus days.
func WorkoutsLast(sessions []models.WorkoutSession, days int, now time.Time) int {
	cutoff := now.AddDate(0, 0, -days)
	count := 0
	for _, s := range sessions {
		if !s.StartTime.Before(cutoff) {
			count++
		}
	}
	return count
}

// PR returns the heaviest weight logged for exerciseID across all sessions.
// ok is false when the exercise has no recorded sets.
func PR(sessions []models.WorkoutSession, exerciseID uuid.UUID) (best float64, ok bool) {
	for _, s := range sessions {
		for _, entry := range s.Exercises {
			if entry.Exercise.ID != exerciseID {
				continue
			}
			for _, set := range entry.Sets {
				if !ok || set.Weight > best {
					best = set.Weight
					ok = true
				}
			}
		}
	}
	return best, ok
}

// PRMap returns the best weight per catalog exercise, leaving out exercises
// that have never had a set recorded.
func PRMap(sessions []models.WorkoutSession, exercises []models.Exercise) map[uuid.UUID]float64 {
	result := make(map[uuid.UUID]float64)
	for _, ex := range exercises {
		if best, ok := PR(sessions, ex.ID); ok {
			result[ex.ID] = best
		}
	}
	return result
}

// AverageDurationMinutes is the mean length of completed sessions in minutes,
// or 0 when no session has ended.
func AverageDurationMinutes(sessions []models.WorkoutSession) float64 {
	var total float64
	var n int
	for _, s := range sessions {
		d, ok := s.Duration()
		if !ok {
			continue
		}
		total += d.Minutes()
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// EstimatedOneRepMax estimates a one-rep max as weight / (1.0278 - 0.0278*reps).
// The result is never below weight.
func EstimatedOneRepMax(weight float64, reps int) float64 {
	return math.Max(weight/(1.0278-0.0278*float64(reps)), weight)
}

// BestEstimatedOneRepMax is the highest one-rep-max estimate across all sets
// of exerciseID.
func BestEstimatedOneRepMax(sessions []models.WorkoutSession, exerciseID uuid.UUID) (best float64, ok bool) {
	for _, s := range sessions {
		for _, entry := range s.Exercises {
			if entry.Exercise.ID != exerciseID {
				continue
			}
			for _, set := range entry.Sets {
				est := EstimatedOneRepMax(set.Weight, set.Reps)
				if !ok || est > best {
					best = est
					ok = true
				}
			}
		}
	}
	return best, ok
}

// TotalVolume sums weight × reps over every set of every session.
func TotalVolume(sessions []models.WorkoutSession) float64 {
	var total float64
	for _, s := range sessions {
		for _, entry := range s.Exercises {
			for _, set := range entry.Sets {
				total += set.Weight * float64(set.Reps)
			}
		}
	}
	return total
}

// Snapshot bundles the metrics shown on the dashboard, stamped with now.
func Snapshot(sessions []models.WorkoutSession, exercises []models.Exercise, now time.Time) models.MetricSnapshot {
	return models.MetricSnapshot{
		ID:                     uuid.New(),
		Date:                   now,
		WorkoutsThisWeek:       WorkoutsLast(sessions, 7, now),
		WorkoutsThisMonth:      WorkoutsLast(sessions, 30, now),
		StreakDays:             StreakCount(sessions, now.Location()),
		PRMap:                  PRMap(sessions, exercises),
		AverageDurationMinutes: AverageDurationMinutes(sessions),
		TotalVolume:            TotalVolume(sessions),
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
