package tasksource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	testcases := []struct {
		name     string
		raw      rawTask
		expected TaskStatus
	}{
		{
			name:     "status string wins over flags",
			raw:      rawTask{Status: "Done", InProgress: true},
			expected: TaskCompleted,
		},
		{
			name:     "status with spaces",
			raw:      rawTask{Status: "In Progress"},
			expected: TaskInProgress,
		},
		{
			name:     "blocked flag",
			raw:      rawTask{Blocked: true},
			expected: TaskBlocked,
		},
		{
			name:     "completed flag beats blocked flag",
			raw:      rawTask{Completed: true, Blocked: true},
			expected: TaskCompleted,
		},
		{
			name:     "no information means todo",
			raw:      rawTask{},
			expected: TaskTodo,
		},
		{
			name:     "unknown status falls back to flags",
			raw:      rawTask{Status: "something-else", InProgress: true},
			expected: TaskInProgress,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, normalizeStatus(tc.raw))
		})
	}
}

func TestConvertSprint(t *testing.T) {
	sprint, err := convertSprint(rawSprint{
		ID:        "sprint-1",
		StartDate: "2023-06-12T00:00:00Z",
		EndDate:   "2023-06-18T23:59:59Z",
	})
	require.NoError(t, err)
	require.Equal(t, "sprint-1", sprint.ID)
	require.True(t, sprint.EndDate.After(sprint.StartDate))

	_, err = convertSprint(rawSprint{ID: "", StartDate: "2023-06-12T00:00:00Z"})
	require.Error(t, err)

	_, err = convertSprint(rawSprint{ID: "sprint-1", StartDate: "not-a-date"})
	require.Error(t, err)
}
