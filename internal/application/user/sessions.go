package user

import (
	"context"

	"pesaguru-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// destroyUserSessions deletes every session tracked in user_sessions:<id>.
func destroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) {
	if rdb == nil || userID == "" {
		return
	}
	key := middleware.UserSessionsPrefix + userID
	sessionIDs, _ := rdb.SMembers(ctx, key).Result()
	for _, sid := range sessionIDs {
		rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	rdb.Del(ctx, key)
}
