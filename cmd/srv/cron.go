package main

import (
	"github.com/teampulse/backend/internal/domain/cron"
	"github.com/teampulse/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewEnsureSprintsCronJob(s.sprintDomain),
		cron.NewRolloverSprintsCronJob(s.sprintDomain),
		cron.NewSyncSprintDataCronJob(s.sprintDomain, xcontext.Configs(s.ctx).Sprint.SyncTimeout),
	)

	return nil
}
