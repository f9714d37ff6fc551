package statistic

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/teampulse/backend/internal/common"
	"github.com/teampulse/backend/pkg/xredis"
)

type Entry struct {
	UserID string
	Score  int64
}

// Leaderboard caches per-sprint eligibility scores in redis sorted sets. It
// is best-effort: callers log failures and carry on, the database remains
// the source of truth.
type Leaderboard struct {
	redisClient xredis.Client
}

func NewLeaderboard(redisClient xredis.Client) *Leaderboard {
	return &Leaderboard{redisClient: redisClient}
}

func (l *Leaderboard) SetScore(
	ctx context.Context, communityID string, sprintNumber int, userID string, score int,
) error {
	key := common.RedisKeySprintLeaderboard(communityID, sprintNumber)
	return l.redisClient.ZAdd(ctx, key, redis.Z{Member: userID, Score: float64(score)})
}

func (l *Leaderboard) GetTop(
	ctx context.Context, communityID string, sprintNumber, offset, limit int,
) ([]Entry, error) {
	key := common.RedisKeySprintLeaderboard(communityID, sprintNumber)
	zs, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		entries = append(entries, Entry{UserID: member, Score: int64(z.Score)})
	}

	return entries, nil
}

func (l *Leaderboard) Clear(ctx context.Context, communityID string, sprintNumber int) error {
	return l.redisClient.Del(ctx, common.RedisKeySprintLeaderboard(communityID, sprintNumber))
}
