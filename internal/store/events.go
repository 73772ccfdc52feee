package store

import (
	"sync"
	"time"
)

// Kind names the collection a change touched.
type Kind string

const (
	KindWorkouts     Kind = "workouts"
	KindWorkoutTypes Kind = "workout_types"
	KindExercises    Kind = "exercises"
	KindGyms         Kind = "gyms"
	KindTimerPresets Kind = "timer_presets"
	KindActiveTimers Kind = "active_timers"
	KindHealthExport Kind = "health_export"
	KindReplaced     Kind = "replaced"
)

// Autosaved reports whether a change of this kind should schedule a save.
// Replace touches every saved collection, so it counts. Active timers and the
// health export counter ride along with the next save instead of triggering
// one.
func (k Kind) Autosaved() bool {
	switch k {
	case KindWorkouts, KindWorkoutTypes, KindExercises, KindGyms, KindTimerPresets, KindReplaced:
		return true
	}
	return false
}

// Change is delivered to subscribers after a mutation completes.
type Change struct {
	Kind Kind
	At   time.Time
}

type subscribers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(Change)
	order  []int
}

// Subscribe registers fn to be called after every state change, in
// subscription order and outside the store lock. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.fns == nil {
		s.subs.fns = make(map[int]func(Change))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.fns[id] = fn
	s.subs.order = append(s.subs.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subs.mu.Lock()
			defer s.subs.mu.Unlock()
			delete(s.subs.fns, id)
			for i, v := range s.subs.order {
				if v == id {
					s.subs.order = append(s.subs.order[:i], s.subs.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) emit(kind Kind) {
	c := Change{Kind: kind, At: s.now()}

	s.subs.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs.order))
	for _, id := range s.subs.order {
		fns = append(fns, s.subs.fns[id])
	}
	s.subs.mu.Unlock()

	s.log.Debug("state changed", "kind", kind)
	for _, fn := range fns {
		fn(c)
	}
}
