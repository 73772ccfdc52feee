package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

func sampleSessions() []models.WorkoutSession {
	notes := `paused, "deep"`
	squat := models.Exercise{ID: uuid.New(), Name: "Squat"}
	bench := models.Exercise{ID: uuid.New(), Name: "Bench Press"}
	return []models.WorkoutSession{
		{
			ID:        uuid.New(),
			Type:      models.WorkoutType{Name: "Legs"},
			StartTime: time.Date(2026, 3, 5, 18, 7, 0, 0, time.UTC),
			Exercises: []models.ExerciseEntry{
				{Exercise: squat, Sets: []models.SetEntry{
					{Weight: 100, Reps: 5},
					{Weight: 102.5, Reps: 3, Notes: &notes},
				}},
				{Exercise: bench, Sets: []models.SetEntry{}},
			},
		},
		{
			ID:        uuid.New(),
			Type:      models.WorkoutType{Name: "Chest"},
			StartTime: time.Date(2026, 12, 25, 9, 30, 0, 0, time.UTC),
			Exercises: []models.ExerciseEntry{
				{Exercise: bench, Sets: []models.SetEntry{{Weight: 60, Reps: 10}}},
			},
		},
	}
}

// TestWriteCSV verifies header, row order, set numbering and quoting.
func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, sampleSessions(), time.UTC); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Date,Type,Exercise,Set,Weight,Reps,Notes",
		`"3/5/26, 6:07 PM",Legs,Squat,1,100,5,`,
		`"3/5/26, 6:07 PM",Legs,Squat,2,102.5,3,"paused, ""deep"""`,
		`"12/25/26, 9:30 AM",Chest,Bench Press,1,60,10,`,
	}, "\n") + "\n"
	if b.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", b.String(), want)
	}
}

// TestWriteCSVEmpty verifies an empty history produces only the header.
func TestWriteCSVEmpty(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, nil, time.UTC); err != nil {
		t.Fatal(err)
	}
	if b.String() != "Date,Type,Exercise,Set,Weight,Reps,Notes\n" {
		t.Errorf("csv = %q", b.String())
	}
}

// TestWriteCSVLocation verifies dates are rendered in the given zone.
func TestWriteCSVLocation(t *testing.T) {
	var b strings.Builder
	zone := time.FixedZone("UTC-8", -8*3600)
	if err := WriteCSV(&b, sampleSessions()[:1], zone); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "3/5/26, 10:07 AM") {
		t.Errorf("csv = %q, want local time", b.String())
	}
}

// TestWriteFile verifies the export lands on disk.
func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.csv")
	if err := WriteFile(path, sampleSessions(), time.UTC); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 4 {
		t.Errorf("lines = %d, want 4", lines)
	}
}
