package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/repflow/internal/catalog"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"repflow://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workout sessions persisted in the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"repflow://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every catalog exercise grouped by muscle group, with default sets and suggestions"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid)
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, workouts)
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	byGroup := make(map[string][]catalog.Exercise)
	for _, g := range catalog.Groups() {
		byGroup[g] = catalog.ByGroup(g)
	}
	return jsonContents(req.Params.URI, byGroup)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
