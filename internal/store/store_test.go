package store

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

// startWithExercise starts a session and adds one exercise to it.
func startWithExercise(t *testing.T, s *Store) (models.WorkoutSession, models.Exercise) {
	t.Helper()
	legs := s.AddWorkoutType("Legs")
	squat := s.AddExercise("Squat", legs)
	session := s.StartWorkout(legs, s.Now(), nil)
	if _, ok := s.AddExerciseToWorkout(session.ID, squat); !ok {
		t.Fatal("AddExerciseToWorkout failed")
	}
	return session, squat
}

// TestStartWorkoutPrepends verifies new sessions go to the front and that
// repeated starts create several ongoing sessions.
func TestStartWorkoutPrepends(t *testing.T) {
	s, clock := newTestStore(t)
	legs := s.AddWorkoutType("Legs")
	first := s.StartWorkout(legs, clock.Now(), nil)
	second := s.StartWorkout(legs, clock.Now(), nil)

	ws := s.Workouts()
	if len(ws) != 2 {
		t.Fatalf("workouts = %d, want 2", len(ws))
	}
	if ws[0].ID != second.ID || ws[1].ID != first.ID {
		t.Error("newest session is not first")
	}
	for _, w := range ws {
		if !w.IsOngoing {
			t.Errorf("session %s not ongoing", w.ID)
		}
		if !w.CreatedAt.Equal(clock.Now()) || !w.UpdatedAt.Equal(clock.Now()) {
			t.Errorf("timestamps = %v/%v, want %v", w.CreatedAt, w.UpdatedAt, clock.Now())
		}
	}
}

// TestStartWorkoutSnapshotsGym verifies the session keeps its own copy of the gym.
func TestStartWorkoutSnapshotsGym(t *testing.T) {
	s, clock := newTestStore(t)
	gym := s.AddGymLocation("Club", "2 Side St", 1, 2, 0)
	if gym.Radius != models.DefaultGymRadius {
		t.Errorf("radius = %v, want default", gym.Radius)
	}
	session := s.StartWorkout(models.WorkoutType{ID: uuid.New(), Name: "Arms"}, clock.Now(), &gym)
	gym.Label = "Renamed"

	got, _ := s.Workout(session.ID)
	if got.GymLocation == nil || got.GymLocation.Label != "Club" {
		t.Errorf("gym snapshot = %+v, want label Club", got.GymLocation)
	}
}

// TestAddSetCount verifies each valid AddSet call adds exactly one set.
func TestAddSetCount(t *testing.T) {
	s, _ := newTestStore(t)
	session, squat := startWithExercise(t, s)

	for i := range 4 {
		if _, ok := s.AddSet(session.ID, squat.ID, float64(100+i), 5, nil); !ok {
			t.Fatalf("AddSet %d failed", i)
		}
	}
	got, _ := s.Workout(session.ID)
	sets := got.Exercises[0].Sets
	if len(sets) != 4 {
		t.Fatalf("sets = %d, want 4", len(sets))
	}
	for i, set := range sets {
		if set.Weight != float64(100+i) {
			t.Errorf("set %d weight = %v, want %d", i, set.Weight, 100+i)
		}
		if set.CustomFields == nil {
			t.Errorf("set %d custom fields nil", i)
		}
	}
}

// TestAddSetUnknownIDsLeaveStateUnchanged verifies lookup misses are silent no-ops.
func TestAddSetUnknownIDsLeaveStateUnchanged(t *testing.T) {
	s, clock := newTestStore(t)
	session, squat := startWithExercise(t, s)
	before := s.Snapshot()

	var changes int
	s.Subscribe(func(Change) { changes++ })
	clock.Advance(time.Minute)

	if _, ok := s.AddSet(uuid.New(), squat.ID, 100, 5, nil); ok {
		t.Error("AddSet with unknown session reported ok")
	}
	if _, ok := s.AddSet(session.ID, uuid.New(), 100, 5, nil); ok {
		t.Error("AddSet with unknown exercise reported ok")
	}
	if ok := s.UpdateSet(session.ID, squat.ID, uuid.New(), SetUpdate{Weight: 1}); ok {
		t.Error("UpdateSet with unknown set reported ok")
	}
	if ok := s.QuickAddSets(uuid.New(), squat.ID, models.SetEntry{}, 3); ok {
		t.Error("QuickAddSets with unknown session reported ok")
	}
	if ok := s.CloseWorkout(uuid.New(), clock.Now(), ""); ok {
		t.Error("CloseWorkout with unknown id reported ok")
	}
	if ok := s.AddCustomField(uuid.New(), "k", "v"); ok {
		t.Error("AddCustomField with unknown id reported ok")
	}
	if _, ok := s.AddExerciseToWorkout(uuid.New(), squat); ok {
		t.Error("AddExerciseToWorkout with unknown id reported ok")
	}

	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("state changed after lookup misses")
	}
	if changes != 0 {
		t.Errorf("changes = %d, want 0", changes)
	}
}

// TestUpdateSet verifies every field is overwritten and updatedAt is stamped.
func TestUpdateSet(t *testing.T) {
	s, clock := newTestStore(t)
	session, squat := startWithExercise(t, s)
	set, _ := s.AddSet(session.ID, squat.ID, 100, 5, map[string]string{"tempo": "slow"})

	clock.Advance(5 * time.Minute)
	rpe := 9.0
	notes := "grindy"
	ok := s.UpdateSet(session.ID, squat.ID, set.ID, SetUpdate{
		Weight: 105, Reps: 4, RPE: &rpe, Notes: &notes, CustomFields: map[string]string{"belt": "yes"},
	})
	if !ok {
		t.Fatal("UpdateSet failed")
	}
	rpe = 1 // caller's copy must not leak into the store

	got, _ := s.Workout(session.ID)
	updated := got.Exercises[0].Sets[0]
	if updated.Weight != 105 || updated.Reps != 4 {
		t.Errorf("weight/reps = %v/%d, want 105/4", updated.Weight, updated.Reps)
	}
	if updated.RPE == nil || *updated.RPE != 9 {
		t.Errorf("rpe = %v, want 9", updated.RPE)
	}
	if updated.Notes == nil || *updated.Notes != "grindy" {
		t.Errorf("notes = %v, want grindy", updated.Notes)
	}
	if !reflect.DeepEqual(updated.CustomFields, map[string]string{"belt": "yes"}) {
		t.Errorf("custom fields = %v", updated.CustomFields)
	}
	if !got.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("updatedAt = %v, want %v", got.UpdatedAt, clock.Now())
	}
}

// TestQuickAddSets verifies count copies of the template are appended.
func TestQuickAddSets(t *testing.T) {
	s, _ := newTestStore(t)
	session, squat := startWithExercise(t, s)
	template := models.SetEntry{ID: uuid.New(), Weight: 60, Reps: 12, CustomFields: map[string]string{}}

	if !s.QuickAddSets(session.ID, squat.ID, template, 3) {
		t.Fatal("QuickAddSets failed")
	}
	got, _ := s.Workout(session.ID)
	sets := got.Exercises[0].Sets
	if len(sets) != 3 {
		t.Fatalf("sets = %d, want 3", len(sets))
	}
	for _, set := range sets {
		if set.Weight != 60 || set.Reps != 12 {
			t.Errorf("set = %+v, want template values", set)
		}
	}
}

// TestCloseWorkout verifies end time, ongoing flag and notes are set.
func TestCloseWorkout(t *testing.T) {
	s, clock := newTestStore(t)
	session, _ := startWithExercise(t, s)
	end := clock.Now().Add(50 * time.Minute)

	if !s.CloseWorkout(session.ID, end, "done") {
		t.Fatal("CloseWorkout failed")
	}
	got, _ := s.Workout(session.ID)
	if got.IsOngoing {
		t.Error("session still ongoing")
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("endTime = %v, want %v", got.EndTime, end)
	}
	if got.Notes != "done" {
		t.Errorf("notes = %q, want done", got.Notes)
	}
}

// TestDeleteWorkoutIdempotent verifies deleting twice equals deleting once.
func TestDeleteWorkoutIdempotent(t *testing.T) {
	s, clock := newTestStore(t)
	legs := s.AddWorkoutType("Legs")
	keep := s.StartWorkout(legs, clock.Now(), nil)
	drop := s.StartWorkout(legs, clock.Now(), nil)

	if !s.DeleteWorkout(drop.ID) {
		t.Error("first delete reported nothing removed")
	}
	once := s.Snapshot()
	if s.DeleteWorkout(drop.ID) {
		t.Error("second delete reported a removal")
	}
	if !reflect.DeepEqual(s.Snapshot(), once) {
		t.Error("second delete changed state")
	}
	ws := s.Workouts()
	if len(ws) != 1 || ws[0].ID != keep.ID {
		t.Errorf("remaining = %v, want only %s", ws, keep.ID)
	}
}

// TestAddCustomFieldAppendsToNotes verifies session fields are written as note lines.
func TestAddCustomFieldAppendsToNotes(t *testing.T) {
	s, _ := newTestStore(t)
	session, _ := startWithExercise(t, s)
	s.AddCustomField(session.ID, "mood", "good")
	s.AddCustomField(session.ID, "sleep", "7h")

	got, _ := s.Workout(session.ID)
	if got.Notes != "\nmood: good\nsleep: 7h" {
		t.Errorf("notes = %q", got.Notes)
	}
}

// TestTimers verifies expired timers are swept and live ones kept.
func TestTimers(t *testing.T) {
	s, clock := newTestStore(t)
	short := s.AddTimer("short", 30*time.Second)
	long := s.AddTimer("long", 3*time.Minute)
	if !short.ExpiresAt.Equal(clock.Now().Add(30 * time.Second)) {
		t.Errorf("expiresAt = %v", short.ExpiresAt)
	}

	clock.Advance(30 * time.Second)
	if n := s.RemoveExpiredTimers(); n != 0 {
		t.Errorf("removed %d at exact expiry, want 0", n)
	}
	clock.Advance(time.Second)
	if n := s.RemoveExpiredTimers(); n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	timers := s.ActiveTimers()
	if len(timers) != 1 || timers[0].ID != long.ID {
		t.Errorf("timers = %v, want only long", timers)
	}
}

// TestMarkExportedToHealth verifies the counter only grows.
func TestMarkExportedToHealth(t *testing.T) {
	s, clock := newTestStore(t)
	s.MarkExportedToHealth(3)
	status := s.MarkExportedToHealth(-5)
	if status.WorkoutsExported != 3 {
		t.Errorf("exported = %d, want 3", status.WorkoutsExported)
	}
	if status.LastExportedAt == nil || !status.LastExportedAt.Equal(clock.Now()) {
		t.Errorf("lastExportedAt = %v", status.LastExportedAt)
	}
}

// TestPRScenario verifies the PR after two sets of 100 and 120.
func TestPRScenario(t *testing.T) {
	s, _ := newTestStore(t)
	session, squat := startWithExercise(t, s)
	s.AddSet(session.ID, squat.ID, 100, 5, nil)
	s.AddSet(session.ID, squat.ID, 120, 3, nil)

	best, ok := s.PR(squat.ID)
	if !ok || best != 120 {
		t.Errorf("PR = %v, %v; want 120, true", best, ok)
	}
	if m := s.PRMap(); m[squat.ID] != 120 {
		t.Errorf("PRMap = %v", m)
	}
	snap := s.SnapshotMetrics()
	if snap.StreakDays != 1 || snap.WorkoutsThisWeek != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// TestSnapshotIsolation verifies callers cannot mutate store state through
// returned values.
func TestSnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	session, squat := startWithExercise(t, s)
	s.AddSet(session.ID, squat.ID, 100, 5, map[string]string{"a": "b"})

	snap := s.Snapshot()
	snap.Workouts[0].Exercises[0].Sets[0].Weight = 1
	snap.Workouts[0].Exercises[0].Sets[0].CustomFields["a"] = "z"
	ws := s.Workouts()
	ws[0].Notes = "changed"

	got, _ := s.Workout(session.ID)
	set := got.Exercises[0].Sets[0]
	if set.Weight != 100 || set.CustomFields["a"] != "b" || got.Notes != "" {
		t.Errorf("store mutated through a copy: %+v", got)
	}
}

// TestSubscribe verifies kinds, ordering and unsubscribe.
func TestSubscribe(t *testing.T) {
	s, _ := newTestStore(t)
	var got []string
	unsubA := s.Subscribe(func(c Change) { got = append(got, "a:"+string(c.Kind)) })
	s.Subscribe(func(c Change) { got = append(got, "b:"+string(c.Kind)) })

	s.AddWorkoutType("Core")
	unsubA()
	unsubA()
	s.AddGymLocation("g", "", 0, 0, 50)

	want := "a:workout_types,b:workout_types,b:gyms"
	if strings.Join(got, ",") != want {
		t.Errorf("changes = %s, want %s", strings.Join(got, ","), want)
	}
}

// TestKindAutosaved verifies which kinds schedule a save.
func TestKindAutosaved(t *testing.T) {
	saved := []Kind{KindWorkouts, KindWorkoutTypes, KindExercises, KindGyms, KindTimerPresets, KindReplaced}
	for _, k := range saved {
		if !k.Autosaved() {
			t.Errorf("%s not autosaved", k)
		}
	}
	for _, k := range []Kind{KindActiveTimers, KindHealthExport} {
		if k.Autosaved() {
			t.Errorf("%s autosaved", k)
		}
	}
}

// TestSetTimerPresetsAssignsIDs verifies presets without an id get one.
func TestSetTimerPresetsAssignsIDs(t *testing.T) {
	s, _ := newTestStore(t)
	if len(s.TimerPresets()) != 3 {
		t.Fatalf("default presets = %d, want 3", len(s.TimerPresets()))
	}
	out := s.SetTimerPresets([]models.TimerPreset{{Name: "3m", Seconds: 180}})
	if len(out) != 1 || out[0].ID == uuid.Nil {
		t.Errorf("presets = %+v", out)
	}
}
