package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/stats"
)

// --- Tool definitions ---

var toolGetMetrics = mcp.NewTool("get_metrics",
	mcp.WithDescription("Current training metrics: streak in days, workouts in the last 7 and 30 days, best weight per exercise, average completed session length in minutes, and total volume (weight x reps over all sets)."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List recorded workout sessions, newest first, with every exercise and set."),
	mcp.WithNumber("days", mcp.Description("Only sessions started in the last N days. Defaults to all.")),
	mcp.WithString("type", mcp.Description("Filter by workout type name (partial match, e.g. 'legs')")),
)

var toolGetPersonalRecord = mcp.NewTool("get_personal_record",
	mcp.WithDescription("Heaviest logged weight and best estimated one-rep max for matching exercises."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match, e.g. 'bench')")),
)

var toolEstimateOneRepMax = mcp.NewTool("estimate_one_rep_max",
	mcp.WithDescription("Estimate a one-rep max as weight / (1.0278 - 0.0278 * reps). Never lower than the lifted weight."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions performed (1 or more)")),
)

// --- Tool handlers ---

func (h *handlers) getMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Metrics(ctx)
	if err != nil {
		h.log.Error("mcp get_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := int(req.GetFloat("days", 0))
	typeFilter := strings.ToLower(req.GetString("type", ""))

	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(filterWorkouts(workouts, days, typeFilter, time.Now()))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

type personalRecord struct {
	ExerciseID         uuid.UUID `json:"exercise_id"`
	Exercise           string    `json:"exercise"`
	BestWeight         *float64  `json:"best_weight"`
	BestEstimatedOneRM *float64  `json:"best_estimated_one_rep_max"`
}

func (h *handlers) getPersonalRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_record exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_record workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	needle := strings.ToLower(name)
	records := []personalRecord{}
	for _, ex := range exercises {
		if !strings.Contains(strings.ToLower(ex.Name), needle) {
			continue
		}
		rec := personalRecord{ExerciseID: ex.ID, Exercise: ex.Name}
		if best, ok := stats.PR(workouts, ex.ID); ok {
			rec.BestWeight = &best
		}
		if est, ok := stats.BestEstimatedOneRepMax(workouts, ex.ID); ok {
			rec.BestEstimatedOneRM = &est
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return mcp.NewToolResultError("no exercise matches " + name), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) estimateOneRepMax(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireFloat("reps")
	if err != nil || reps < 1 {
		return mcp.NewToolResultError("reps must be 1 or more"), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]float64{
		"estimated_one_rep_max": stats.EstimatedOneRepMax(weight, int(reps)),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// filterWorkouts keeps sessions started within days of now (all when days
// is 0) whose type name contains typeFilter.
func filterWorkouts(workouts []models.WorkoutSession, days int, typeFilter string, now time.Time) []models.WorkoutSession {
	var cutoff time.Time
	if days > 0 {
		cutoff = now.AddDate(0, 0, -days)
	}
	out := []models.WorkoutSession{}
	for _, w := range workouts {
		if w.StartTime.Before(cutoff) {
			continue
		}
		if typeFilter != "" && !strings.Contains(strings.ToLower(w.Type.Name), typeFilter) {
			continue
		}
		out = append(out, w)
	}
	return out
}
