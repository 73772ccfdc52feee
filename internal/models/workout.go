package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutType is a user-defined category such as "Legs" or "Cardio".
type WorkoutType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Exercise is a catalog entry. WorkoutTypeID is not checked against the type list.
type Exercise struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	WorkoutTypeID uuid.UUID `json:"workoutTypeID"`
	DefaultWeight *float64  `json:"defaultWeight,omitempty"`
	DefaultReps   *int      `json:"defaultReps,omitempty"`
}

// SetEntry is a single logged set.
type SetEntry struct {
	ID           uuid.UUID         `json:"id"`
	Weight       float64           `json:"weight"`
	Reps         int               `json:"reps"`
	RPE          *float64          `json:"rpe,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	CustomFields map[string]string `json:"customFields"`
}

// ExerciseEntry holds the sets logged for one exercise within a session.
// Exercise is a copy taken when the entry was added.
type ExerciseEntry struct {
	ID           uuid.UUID         `json:"id"`
	Exercise     Exercise          `json:"exercise"`
	Sets         []SetEntry        `json:"sets"`
	CustomFields map[string]string `json:"customFields"`
}

// WorkoutSession is one recorded workout. Type and GymLocation are snapshots
// and do not follow later edits of their source entities.
type WorkoutSession struct {
	ID          uuid.UUID       `json:"id"`
	Type        WorkoutType     `json:"type"`
	Exercises   []ExerciseEntry `json:"exercises"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
	IsOngoing   bool            `json:"isOngoing"`
	GymLocation *GymLocation    `json:"gymLocation,omitempty"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DefaultGymRadius is the geofence radius in meters used when none is given.
const DefaultGymRadius = 100.0

// GymLocation is a saved gym with a circular region around it.
type GymLocation struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Radius    float64   `json:"radius"`
}

// TimerPreset is a named rest duration offered when starting a timer.
type TimerPreset struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Seconds int       `json:"seconds"`
}

// RestTimer is a running rest countdown.
type RestTimer struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Duration  float64   `json:"duration"` // seconds
	ExpiresAt time.Time `json:"expiresAt"`
}

// HealthExportStatus tracks what has been marked as exported to the health
// data store. WorkoutsExported only ever grows.
type HealthExportStatus struct {
	LastExportedAt   *time.Time `json:"lastExportedAt,omitempty"`
	WorkoutsExported int        `json:"workoutsExported"`
}

// MetricSnapshot bundles the derived metrics at one point in time.
type MetricSnapshot struct {
	ID                     uuid.UUID             `json:"id"`
	Date                   time.Time             `json:"date"`
	WorkoutsThisWeek       int                   `json:"workoutsThisWeek"`
	WorkoutsThisMonth      int                   `json:"workoutsThisMonth"`
	StreakDays             int                   `json:"streakDays"`
	PRMap                  map[uuid.UUID]float64 `json:"prMap"`
	AverageDurationMinutes float64               `json:"averageDurationMinutes"`
	TotalVolume            float64               `json:"totalVolume"`
}

// DefaultTimerPresets returns the presets offered before the user edits the list.
func DefaultTimerPresets() []TimerPreset {
	return []TimerPreset{
		{ID: uuid.New(), Name: "60s", Seconds: 60},
		{ID: uuid.New(), Name: "90s", Seconds: 90},
		{ID: uuid.New(), Name: "2m", Seconds: 120},
	}
}
