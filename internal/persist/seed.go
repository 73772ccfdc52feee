package persist

import (
	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
)

// Seed returns the dataset used when no readable data file exists.
func Seed() models.Payload {
	types := []models.WorkoutType{
		{ID: uuid.New(), Name: "Chest"},
		{ID: uuid.New(), Name: "Arms"},
		{ID: uuid.New(), Name: "Legs"},
		{ID: uuid.New(), Name: "Core"},
		{ID: uuid.New(), Name: "Cardio"},
		{ID: uuid.New(), Name: "HIIT"},
	}
	chest, legs := types[0], types[2]

	return models.Payload{
		Types: types,
		Exercises: []models.Exercise{
			seedExercise("Bench Press", chest, 45, 8),
			seedExercise("Squat", legs, 95, 8),
			seedExercise("Deadlift", legs, 135, 5),
		},
		Workouts:     []models.WorkoutSession{},
		GymLocations: []models.GymLocation{},
		TimerPresets: models.DefaultTimerPresets(),
	}
}

func seedExercise(name string, t models.WorkoutType, weight float64, reps int) models.Exercise {
	return models.Exercise{
		ID:            uuid.New(),
		Name:          name,
		WorkoutTypeID: t.ID,
		DefaultWeight: &weight,
		DefaultReps:   &reps,
	}
}
