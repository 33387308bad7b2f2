package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// eventChannel is the pub/sub channel shared by all API instances.
const eventChannel = "voice:call-events"

// RedisBridge spans the hub across API instances: events are published to a
// Redis pub/sub channel, and every instance's subscription loop feeds its own
// local hub. A browser connected to any instance sees all events of its
// workspace, regardless of which instance received the webhook.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
	log *slog.Logger
}

func NewRedisBridge(rdb *redis.Client, hub *Hub, log *slog.Logger) *RedisBridge {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBridge{rdb: rdb, hub: hub, log: log}
}

// Publish forwards ev to the shared channel. Local delivery happens through
// the Run loop, the same way remote instances receive it. If Redis is down,
// the event is delivered locally so single-instance behavior survives.
func (b *RedisBridge) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("call event marshal failed", "err", err)
		return
	}
	if err := b.rdb.Publish(ctx, eventChannel, payload).Err(); err != nil {
		b.log.Warn("call event publish to redis failed, delivering locally", "err", err)
		b.hub.Publish(ctx, ev)
	}
}

// Run consumes the shared channel into the local hub until ctx is canceled.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, eventChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("malformed call event on redis channel", "err", err)
				continue
			}
			b.hub.Publish(ctx, ev)
		}
	}
}
