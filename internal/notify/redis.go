package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/redis/go-redis/v9"
)

type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, event transfer.ThemeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if err := n.client.Publish(ctx, Channel(event.ThemeID), data).Err(); err != nil {
		slog.Warn("publishing theme event failed", "theme_id", event.ThemeID, "error", err)
	}
}

func (n *RedisNotifier) Subscribe(ctx context.Context, themeID string) (<-chan transfer.ThemeEvent, func(), error) {
	pubsub := n.client.Subscribe(ctx, Channel(themeID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan transfer.ThemeEvent, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event transfer.ThemeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Info(err.Error())
					continue
				}
				select {
				case out <- event:
				default:
					slog.Warn("dropping theme event for slow subscriber", "theme_id", themeID)
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}
