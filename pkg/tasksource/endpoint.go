package tasksource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/teampulse/backend/config"
	"github.com/teampulse/backend/pkg/api"
	"github.com/teampulse/backend/pkg/xcontext"
)

type Endpoint struct {
	apiGenerator api.Generator
	apiKey       string
	timeout      time.Duration
}

func New(cfg config.TaskSourceConfigs) *Endpoint {
	return &Endpoint{
		apiGenerator: api.NewGenerator(cfg.APIEndpoints...),
		apiKey:       cfg.APIKey,
		timeout:      cfg.Timeout,
	}
}

func (e *Endpoint) ListSprints(ctx context.Context) ([]Sprint, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.apiGenerator.New("/sprints").
		Header("Authorization", "Bearer "+e.apiKey).
		GET(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code != 200 {
		xcontext.Logger(ctx).Errorf("Invalid status code: %v", resp.Body)
		return nil, fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid body format")
	}

	sprints := make([]Sprint, 0, len(body))
	for _, item := range body {
		raw := rawSprint{}
		if err := mapstructure.Decode(map[string]any(item), &raw); err != nil {
			return nil, err
		}

		sprint, err := convertSprint(raw)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot convert sprint %s: %v", raw.ID, err)
			continue
		}

		sprints = append(sprints, sprint)
	}

	return sprints, nil
}

func (e *Endpoint) GetSprintTasks(ctx context.Context, sprintID string) ([]Task, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.apiGenerator.New("/sprints/%s/tasks", sprintID).
		Header("Authorization", "Bearer "+e.apiKey).
		GET(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code != 200 {
		xcontext.Logger(ctx).Errorf("Invalid status code: %v", resp.Body)
		return nil, fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid body format")
	}

	tasks := make([]Task, 0, len(body))
	for _, item := range body {
		raw := rawTask{}
		if err := mapstructure.Decode(map[string]any(item), &raw); err != nil {
			return nil, err
		}

		if raw.AssigneeID == "" {
			continue
		}

		tasks = append(tasks, Task{
			ExternalUserID: raw.AssigneeID,
			Status:         normalizeStatus(raw),
		})
	}

	return tasks, nil
}

func convertSprint(raw rawSprint) (Sprint, error) {
	if raw.ID == "" {
		return Sprint{}, errors.New("empty sprint id")
	}

	start, err := time.Parse(time.RFC3339, raw.StartDate)
	if err != nil {
		return Sprint{}, err
	}

	end, err := time.Parse(time.RFC3339, raw.EndDate)
	if err != nil {
		return Sprint{}, err
	}

	return Sprint{ID: raw.ID, StartDate: start, EndDate: end}, nil
}

// normalizeStatus folds the source's mixed boolean/string status shapes into
// the canonical TaskStatus. The status string wins when present; boolean
// flags are the fallback for older boards.
func normalizeStatus(raw rawTask) TaskStatus {
	switch strings.ToLower(strings.ReplaceAll(raw.Status, " ", "_")) {
	case "done", "completed", "closed":
		return TaskCompleted
	case "in_progress", "doing", "active":
		return TaskInProgress
	case "blocked", "stuck":
		return TaskBlocked
	case "todo", "open", "backlog":
		return TaskTodo
	}

	switch {
	case raw.Completed:
		return TaskCompleted
	case raw.Blocked:
		return TaskBlocked
	case raw.InProgress:
		return TaskInProgress
	default:
		return TaskTodo
	}
}
