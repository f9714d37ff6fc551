package cron

import (
	"context"
	"time"

	"github.com/teampulse/backend/internal/domain"
	"github.com/teampulse/backend/pkg/dateutil"
)

// EnsureSprintsCronJob guarantees every community has a sprint covering the
// current week. It backs up the eager creation done on community creation
// and the read path.
type EnsureSprintsCronJob struct {
	sprintDomain domain.SprintDomain
}

func NewEnsureSprintsCronJob(sprintDomain domain.SprintDomain) *EnsureSprintsCronJob {
	return &EnsureSprintsCronJob{sprintDomain: sprintDomain}
}

func (job *EnsureSprintsCronJob) Do(ctx context.Context) {
	job.sprintDomain.CheckAndCreateSprints(ctx)
}

func (job *EnsureSprintsCronJob) RunNow() bool {
	return true
}

func (job *EnsureSprintsCronJob) Next() time.Time {
	return dateutil.NextHour(time.Now())
}
