package redis

import (
	"UniShare.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-redis/redis"
)

var (
	RedisDBComment *redis.Client
	RedisDBLike    *redis.Client
)

func Load() {
	RedisDBComment = redis.NewClient(&redis.Options{
		Addr:     config.ConfigInfo.Redis.Addr,
		Password: config.ConfigInfo.Redis.Password,
		DB:       config.ConfigInfo.Redis.CommentDB,
	})

	RedisDBLike = redis.NewClient(&redis.Options{
		Addr:     config.ConfigInfo.Redis.Addr,
		Password: config.ConfigInfo.Redis.Password,
		DB:       config.ConfigInfo.Redis.LikeDB,
	})

	if _, err := RedisDBComment.Ping().Result(); err != nil {
		hlog.Info("RedisDBComment", err)
	}
	if _, err := RedisDBLike.Ping().Result(); err != nil {
		hlog.Info("RedisDBLike", err)
	}
}
