package testutil

import (
	"context"

	"github.com/teampulse/backend/pkg/tasksource"
)

type MockTaskSource struct {
	ListSprintsFunc    func(ctx context.Context) ([]tasksource.Sprint, error)
	GetSprintTasksFunc func(ctx context.Context, sprintID string) ([]tasksource.Task, error)
}

func (m *MockTaskSource) ListSprints(ctx context.Context) ([]tasksource.Sprint, error) {
	if m.ListSprintsFunc != nil {
		return m.ListSprintsFunc(ctx)
	}

	return nil, nil
}

func (m *MockTaskSource) GetSprintTasks(ctx context.Context, sprintID string) ([]tasksource.Task, error) {
	if m.GetSprintTasksFunc != nil {
		return m.GetSprintTasksFunc(ctx, sprintID)
	}

	return nil, nil
}
