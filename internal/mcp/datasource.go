package mcp

import (
	"context"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// DataSource abstracts the data layer for MCP tools. StoreSource (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Workouts(ctx context.Context) ([]models.WorkoutSession, error)
	Exercises(ctx context.Context) ([]models.Exercise, error)
	Metrics(ctx context.Context) (models.MetricSnapshot, error)
}

// StoreSource serves tools from an in-process store.
type StoreSource struct {
	Store *store.Store
}

// Compile-time check: StoreSource satisfies DataSource.
var _ DataSource = StoreSource{}

func (s StoreSource) Workouts(context.Context) ([]models.WorkoutSession, error) {
	return s.Store.Workouts(), nil
}

func (s StoreSource) Exercises(context.Context) ([]models.Exercise, error) {
	return s.Store.Exercises(), nil
}

func (s StoreSource) Metrics(context.Context) (models.MetricSnapshot, error) {
	return s.Store.SnapshotMetrics(), nil
}
