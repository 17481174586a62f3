package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// Bus fans catalog events out to other processes after they are committed.
type Bus interface {
	Publish(ctx context.Context, evt *catalog.CatalogEvent) error
	Subscribe(ctx context.Context, onEvent func(evt Message)) error
	Close() error
}

// Message is the wire form of a CatalogEvent.
type Message struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	SubjectID string          `json:"subject_id"`
	ActorID   string          `json:"actor_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func Encode(evt *catalog.CatalogEvent) ([]byte, error) {
	if evt == nil {
		return nil, fmt.Errorf("nil event")
	}
	msg := Message{
		ID:        evt.ID.String(),
		Kind:      evt.Kind,
		SubjectID: evt.SubjectID.String(),
		ActorID:   evt.ActorID.String(),
		CreatedAt: evt.CreatedAt.UTC(),
	}
	if len(evt.Payload) > 0 {
		msg.Payload = json.RawMessage(evt.Payload)
	}
	return json.Marshal(msg)
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(log *logger.Logger, addr, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "catalog-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

// Client exposes the underlying connection for health collection.
func Client(b Bus) *goredis.Client {
	if rb, ok := b.(*redisBus); ok {
		return rb.rdb
	}
	return nil
}

func (b *redisBus) Publish(ctx context.Context, evt *catalog.CatalogEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	raw, err := Encode(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, onEvent func(evt Message)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad catalog event payload", "error", err)
					continue
				}
				onEvent(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

type nopBus struct{}

// NewNop returns a bus that drops everything; used when REDIS_ADDR is unset.
func NewNop() Bus { return nopBus{} }

func (nopBus) Publish(context.Context, *catalog.CatalogEvent) error { return nil }

func (nopBus) Subscribe(context.Context, func(Message)) error { return nil }

func (nopBus) Close() error { return nil }
