// Package otp provides one-time code stores for the password reset flow.
package otp

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/user"
)

const keyPrefix = "otp:"

type redisStore struct {
	client *redis.Client
}

var _ user.OTPStore = (*redisStore)(nil)

func NewRedisStore(conf *core.Config) *redisStore {
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}),
	}
}

func (s *redisStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+email, code, ttl).Err(); err != nil {
		return errors.Wrap(err, "storing code")
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, keyPrefix+email).Result()
	if err == redis.Nil {
		return "", user.ErrOTPInvalid
	}
	if err != nil {
		return "", errors.Wrap(err, "fetching code")
	}
	return code, nil
}

func (s *redisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		return errors.Wrap(err, "deleting code")
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
