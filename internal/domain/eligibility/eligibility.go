package eligibility

import (
	mathUtil "github.com/pkg/math"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/pkg/tasksource"
)

const (
	MaxScore             = 12
	maxCompletionPoints  = 8
	maxProgressBonus     = 2
	maxBlockedPenalty    = 2
	fullParticipation    = 3
	partialParticipation = 1
)

type Breakdown struct {
	Completed  int
	InProgress int
	Blocked    int
	Todo       int
}

func (b Breakdown) Total() int {
	return b.Completed + b.InProgress + b.Blocked + b.Todo
}

func (b Breakdown) ToMap() entity.Map {
	return entity.Map{
		"completed":   b.Completed,
		"in_progress": b.InProgress,
		"blocked":     b.Blocked,
		"todo":        b.Todo,
	}
}

// FromTasks counts one user's normalized tasks into a breakdown.
func FromTasks(tasks []tasksource.Task) Breakdown {
	var b Breakdown
	for _, task := range tasks {
		switch task.Status {
		case tasksource.TaskCompleted:
			b.Completed++
		case tasksource.TaskInProgress:
			b.InProgress++
		case tasksource.TaskBlocked:
			b.Blocked++
		default:
			b.Todo++
		}
	}

	return b
}

type Result struct {
	Score    int
	Eligible bool
}

// Score maps a task breakdown to a bounded score and an eligibility flag.
// Completion earns up to 8 points proportional to the completion rate,
// participation up to 2, in-progress work up to 2, and blocked tasks cost up
// to 2. A user with no tasks at all scores zero and is never eligible.
func Score(b Breakdown, threshold int) Result {
	total := b.Total()
	if total == 0 {
		return Result{Score: 0, Eligible: false}
	}

	completionPoints := mathUtil.MinInt(maxCompletionPoints, b.Completed*maxCompletionPoints/total)

	participationPoints := 0
	switch {
	case total >= fullParticipation:
		participationPoints = 2
	case total >= partialParticipation:
		participationPoints = 1
	}

	progressBonus := mathUtil.MinInt(maxProgressBonus, b.InProgress)
	blockedPenalty := mathUtil.MinInt(maxBlockedPenalty, b.Blocked)

	score := completionPoints + participationPoints + progressBonus - blockedPenalty
	score = mathUtil.MaxInt(0, mathUtil.MinInt(MaxScore, score))

	return Result{Score: score, Eligible: score >= threshold}
}
