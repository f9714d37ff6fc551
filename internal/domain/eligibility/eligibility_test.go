package eligibility

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teampulse/backend/pkg/tasksource"
)

func TestScore(t *testing.T) {
	testcases := []struct {
		name      string
		breakdown Breakdown
		threshold int
		expected  Result
	}{
		{
			name:      "no tasks at all",
			breakdown: Breakdown{},
			threshold: 8,
			expected:  Result{Score: 0, Eligible: false},
		},
		{
			name:      "no tasks is ineligible even with zero threshold",
			breakdown: Breakdown{},
			threshold: 0,
			expected:  Result{Score: 0, Eligible: false},
		},
		{
			name:      "partial completion below threshold",
			breakdown: Breakdown{Completed: 5, InProgress: 1, Blocked: 1},
			threshold: 8,
			// rate 71.43% -> 5 completion points, 2 participation, 1
			// progress, 1 blocked penalty.
			expected: Result{Score: 7, Eligible: false},
		},
		{
			name:      "high completion above threshold",
			breakdown: Breakdown{Completed: 4, InProgress: 1},
			threshold: 8,
			// rate 80% -> 6 completion, 2 participation, 1 progress.
			expected: Result{Score: 9, Eligible: true},
		},
		{
			name:      "all completed reaches max completion points",
			breakdown: Breakdown{Completed: 4},
			threshold: 8,
			// rate 100% -> 8 completion, 2 participation.
			expected: Result{Score: 10, Eligible: true},
		},
		{
			name:      "single task participation",
			breakdown: Breakdown{Completed: 1},
			threshold: 8,
			expected:  Result{Score: 9, Eligible: true},
		},
		{
			name:      "blocked work cannot push score below zero",
			breakdown: Breakdown{Blocked: 5},
			threshold: 8,
			expected:  Result{Score: 0, Eligible: false},
		},
		{
			name:      "progress bonus is capped at two",
			breakdown: Breakdown{Completed: 3, InProgress: 4},
			threshold: 8,
			// rate 42.86% -> 3 completion, 2 participation, 2 progress.
			expected: Result{Score: 7, Eligible: false},
		},
		{
			name:      "todo only counts toward participation",
			breakdown: Breakdown{Todo: 3},
			threshold: 2,
			expected:  Result{Score: 2, Eligible: true},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Score(tc.breakdown, tc.threshold))
		})
	}
}

func TestFromTasks(t *testing.T) {
	tasks := []tasksource.Task{
		{ExternalUserID: "u1", Status: tasksource.TaskCompleted},
		{ExternalUserID: "u1", Status: tasksource.TaskCompleted},
		{ExternalUserID: "u1", Status: tasksource.TaskInProgress},
		{ExternalUserID: "u1", Status: tasksource.TaskBlocked},
		{ExternalUserID: "u1", Status: tasksource.TaskTodo},
	}

	require.Equal(t, Breakdown{Completed: 2, InProgress: 1, Blocked: 1, Todo: 1}, FromTasks(tasks))
}
