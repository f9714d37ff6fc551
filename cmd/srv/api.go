package main

import (
	"net/http"

	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/pkg/router"
	"github.com/teampulse/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", cfg.ApiServer.Address())
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Use(middleware.WithAuth())

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Use(middleware.Authenticate())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)

		// Community API
		router.POST(authRouter, "/createCommunity", s.communityDomain.Create)
		router.POST(authRouter, "/joinCommunity", s.communityDomain.Join)

		// Sprint API
		router.POST(authRouter, "/syncSprint", s.sprintDomain.Sync)

		// Transaction API
		router.POST(authRouter, "/sendTransaction", s.transactionDomain.Send)
		router.POST(authRouter, "/approveTransaction", s.transactionDomain.Approve)
		router.POST(authRouter, "/rejectTransaction", s.transactionDomain.Reject)
		router.GET(authRouter, "/getMyTransactions", s.transactionDomain.GetMyTransactions)
		router.GET(authRouter, "/getPendingTransactions", s.transactionDomain.GetPendingTransactions)
	}

	// Public API.
	router.GET(s.router, "/getMembers", s.communityDomain.GetMembers)
	router.GET(s.router, "/getCurrentSprint", s.sprintDomain.GetCurrentSprint)
	router.GET(s.router, "/getSprints", s.sprintDomain.GetSprints)
	router.GET(s.router, "/getLeaderboard", s.sprintDomain.GetLeaderboard)
}
