package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/teampulse/backend/config"
	"github.com/teampulse/backend/internal/client"
	"github.com/teampulse/backend/internal/common"
	"github.com/teampulse/backend/internal/domain"
	"github.com/teampulse/backend/internal/domain/statistic"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/migration"
	"github.com/teampulse/backend/pkg/authenticator"
	"github.com/teampulse/backend/pkg/logger"
	"github.com/teampulse/backend/pkg/router"
	"github.com/teampulse/backend/pkg/tasksource"
	"github.com/teampulse/backend/pkg/xcontext"
	"github.com/teampulse/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	userRepo        repository.UserRepository
	communityRepo   repository.CommunityRepository
	memberRepo      repository.MemberRepository
	sprintRepo      repository.SprintRepository
	transactionRepo repository.TransactionRepository

	userDomain        domain.UserDomain
	communityDomain   domain.CommunityDomain
	sprintDomain      domain.SprintDomain
	transactionDomain domain.TransactionDomain

	redisClient xredis.Client
	taskSource  tasksource.IEndpoint
	notifier    client.Notifier
	leaderboard *statistic.Leaderboard

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	cfg := config.Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: getEnvAsInt("LOG_LEVEL", logger.INFO),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "teampulse"),
			Password: getEnv("MYSQL_PASSWORD", "teampulse"),
			Database: getEnv("MYSQL_DATABASE", "teampulse"),
		},
		ApiServer: config.ServerConfigs{
			Host:         getEnv("HOST", "localhost"),
			Port:         getEnv("PORT", "8080"),
			DefaultLimit: getEnvAsInt("API_DEFAULT_LIMIT", 10),
			MaxLimit:     getEnvAsInt("API_MAX_LIMIT", 50),
			AllowCORS:    strings.Split(getEnv("ALLOW_CORS", "http://localhost:3000"), ","),
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token_secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: getEnvAsDuration("ACCESS_TOKEN_DURATION", time.Hour*24*7),
			},
		},
		Sprint: config.SprintConfigs{
			RewardPointsPerSprint: getEnvAsUint64("SPRINT_REWARD_POINTS", 500),
			EligibilityThreshold:  getEnvAsInt("SPRINT_ELIGIBILITY_THRESHOLD", 8),
			ApprovalThreshold:     getEnvAsUint64("TRANSACTION_APPROVAL_THRESHOLD", 100),
			SyncTimeout:           getEnvAsDuration("SPRINT_SYNC_TIMEOUT", 15*time.Minute),
		},
		TaskSource: config.TaskSourceConfigs{
			APIEndpoints: strings.Split(getEnv("TASK_SOURCE_ENDPOINTS", "http://localhost:9000"), ","),
			APIKey:       getEnv("TASK_SOURCE_API_KEY", ""),
			Timeout:      getEnvAsDuration("TASK_SOURCE_TIMEOUT", 30*time.Second),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Notification: config.NotificationConfigs{
			WebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),
		},
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.LogLevel))
	s.ctx = xcontext.WithTokenEngine(s.ctx,
		authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.AccessToken))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)
	db, err := gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.communityRepo = repository.NewCommunityRepository()
	s.memberRepo = repository.NewMemberRepository()
	s.sprintRepo = repository.NewSprintRepository()
	s.transactionRepo = repository.NewTransactionRepository()
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)

	s.taskSource = tasksource.New(cfg.TaskSource)
	s.notifier = client.NewWebhookNotifier(cfg.Notification)
	s.leaderboard = statistic.NewLeaderboard(s.redisClient)
	roleVerifier := common.NewCommunityRoleVerifier(s.memberRepo, s.userRepo)

	s.userDomain = domain.NewUserDomain(s.userRepo, s.memberRepo, s.communityRepo)
	s.sprintDomain = domain.NewSprintDomain(
		s.communityRepo, s.sprintRepo, s.memberRepo, s.userRepo,
		s.taskSource, s.leaderboard, s.notifier, roleVerifier)
	s.communityDomain = domain.NewCommunityDomain(
		s.communityRepo, s.memberRepo, s.userRepo, s.sprintDomain, s.notifier)
	s.transactionDomain = domain.NewTransactionDomain(
		s.transactionRepo, s.memberRepo, s.userRepo, s.communityRepo, roleVerifier)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}

	return n
}

func getEnvAsUint64(key string, fallback uint64) uint64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		panic(err)
	}

	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}

	return d
}
