package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "efir:otp:"

// OTPRepository keeps pending one-time codes in redis. The TTL makes expiry
// explicit: redis drops stale codes on its own.
type OTPRepository struct {
	rdb *redis.Client
}

func NewOTPRepository(rdb *redis.Client) *OTPRepository {
	return &OTPRepository{rdb: rdb}
}

func (r *OTPRepository) Set(ctx context.Context, badgeID, otpHash string, ttl time.Duration) error {
	return r.rdb.Set(ctx, otpKeyPrefix+badgeID, otpHash, ttl).Err()
}

func (r *OTPRepository) Get(ctx context.Context, badgeID string) (string, error) {
	val, err := r.rdb.Get(ctx, otpKeyPrefix+badgeID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *OTPRepository) Delete(ctx context.Context, badgeID string) error {
	return r.rdb.Del(ctx, otpKeyPrefix+badgeID).Err()
}
