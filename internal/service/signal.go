package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/domain"
)

// SignalService fans events out over redis pub/sub so realtime subscribers
// on any instance see them.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event efir.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, domain.EventChannel, jsonstr).Err()
}

// Subscribe delivers events to the returned channel until ctx is cancelled.
func (s *SignalService) Subscribe(ctx context.Context) (<-chan efir.Event, func()) {
	sub := s.rdb.Subscribe(ctx, domain.EventChannel)
	out := make(chan efir.Event)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event efir.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}
