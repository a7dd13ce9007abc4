package redis

import (
	"context"
	"localguide/config"
	"net"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 3 * time.Second

func New(config *config.Config) *goRedis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(config.Cache.Redis.Primary.Host, config.Cache.Redis.Primary.Port),
		Password: config.Cache.Redis.Primary.Password,
		DB:       config.Cache.Redis.Primary.DB,
	})

	// the rate limiter fails open, so an unreachable redis is not fatal at boot
	_, err := client.Ping(ctx).Result()
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to Redis")

		return client
	}

	log.Info().
		Int("db", config.Cache.Redis.Primary.DB).
		Str("host", config.Cache.Redis.Primary.Host).
		Str("port", config.Cache.Redis.Primary.Port).
		Msg("Connected to Redis")

	return client
}
