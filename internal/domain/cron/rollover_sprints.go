package cron

import (
	"context"
	"time"

	"github.com/teampulse/backend/internal/domain"
	"github.com/teampulse/backend/pkg/dateutil"
)

// RolloverSprintsCronJob completes sprints whose window has passed and
// creates their successors.
type RolloverSprintsCronJob struct {
	sprintDomain domain.SprintDomain
}

func NewRolloverSprintsCronJob(sprintDomain domain.SprintDomain) *RolloverSprintsCronJob {
	return &RolloverSprintsCronJob{sprintDomain: sprintDomain}
}

func (job *RolloverSprintsCronJob) Do(ctx context.Context) {
	job.sprintDomain.RolloverSprints(ctx)
}

func (job *RolloverSprintsCronJob) RunNow() bool {
	return true
}

func (job *RolloverSprintsCronJob) Next() time.Time {
	return dateutil.NextHour(time.Now())
}
