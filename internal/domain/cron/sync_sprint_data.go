package cron

import (
	"context"
	"time"

	"github.com/teampulse/backend/internal/domain"
	"github.com/teampulse/backend/pkg/xcontext"
)

// SyncSprintDataCronJob refreshes task statistics and eligibility scores of
// every active sprint from the task source.
type SyncSprintDataCronJob struct {
	sprintDomain domain.SprintDomain
	interval     time.Duration
}

func NewSyncSprintDataCronJob(
	sprintDomain domain.SprintDomain, interval time.Duration,
) *SyncSprintDataCronJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &SyncSprintDataCronJob{sprintDomain: sprintDomain, interval: interval}
}

func (job *SyncSprintDataCronJob) Do(ctx context.Context) {
	if err := job.sprintDomain.SyncSprintData(ctx, ""); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sync sprint data: %v", err)
	}
}

func (job *SyncSprintDataCronJob) RunNow() bool {
	return false
}

func (job *SyncSprintDataCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
