package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iammohit64/wrap-up/internal/ledger"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event ChainEvent) (messageID string, err error)

	// PublishConfirmation fans a confirmed transaction's events onto the
	// chain stream, one message per decoded event.
	PublishConfirmation(ctx context.Context, conf *ledger.Confirmation) error
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD.
// Uses "*" for auto-generated message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ChainEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()

	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s msgID=%s tx=%s duration=%v",
		stream, event.Type, messageID, event.TxHash, time.Since(startTime))

	return messageID, nil
}

// PublishConfirmation publishes every event from a confirmed transaction.
// A partial failure is returned after the successfully published prefix; the
// reconciliation paths are idempotent, so the caller can simply re-confirm.
func (p *RedisPublisher) PublishConfirmation(ctx context.Context, conf *ledger.Confirmation) error {
	for _, ev := range conf.Events {
		if _, err := p.Publish(ctx, StreamChain, FromLedgerEvent(ev)); err != nil {
			return err
		}
	}
	return nil
}
