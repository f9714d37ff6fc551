package common

import "fmt"

func RedisKeySprintLeaderboard(communityID string, sprintNumber int) string {
	return fmt.Sprintf("leaderboard:%s:%d", communityID, sprintNumber)
}
