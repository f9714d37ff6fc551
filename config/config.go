package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel int

	Database     DatabaseConfigs
	ApiServer    ServerConfigs
	Auth         AuthConfigs
	Sprint       SprintConfigs
	TaskSource   TaskSourceConfigs
	Redis        RedisConfigs
	Notification NotificationConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string

	DefaultLimit int
	MaxLimit     int
	AllowCORS    []string
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

// SprintConfigs holds the platform-wide defaults of the sprint lifecycle and
// the points ledger. Communities can override the reward and threshold
// values through their settings.
type SprintConfigs struct {
	RewardPointsPerSprint uint64
	EligibilityThreshold  int
	ApprovalThreshold     uint64
	SyncTimeout           time.Duration
}

// TaskSourceConfigs is injected into the task source adapter at construction
// time. Credentials never live in package-level state.
type TaskSourceConfigs struct {
	APIEndpoints []string
	APIKey       string
	Timeout      time.Duration
}

type RedisConfigs struct {
	Addr string
}

type NotificationConfigs struct {
	WebhookURL string
}
