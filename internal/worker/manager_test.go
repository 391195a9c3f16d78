package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iammohit64/wrap-up/internal/queue"
)

type mockConsumer struct {
	ensureGroupFn func(ctx context.Context, stream, group string) error
	pendingFn     func(ctx context.Context, stream, group string) (int64, error)

	pendingCalls int32
}

func (m *mockConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	if m.ensureGroupFn != nil {
		return m.ensureGroupFn(ctx, stream, group)
	}
	return nil
}

func (m *mockConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	// Block until shutdown so worker loops stay quiet during the test.
	<-ctx.Done()
	return nil, nil
}

func (m *mockConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	return nil
}

func (m *mockConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	atomic.AddInt32(&m.pendingCalls, 1)
	if m.pendingFn != nil {
		return m.pendingFn(ctx, stream, group)
	}
	return 0, nil
}

func (m *mockConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]queue.Message, error) {
	return nil, nil
}

func TestManager_Start_ChecksPendingBacklog(t *testing.T) {
	consumer := &mockConsumer{
		pendingFn: func(ctx context.Context, stream, group string) (int64, error) {
			if stream != queue.StreamChain || group != queue.ConsumerGroupChain {
				t.Errorf("pending check on stream=%s group=%s", stream, group)
			}
			return 3, nil
		},
	}
	manager := NewManager(consumer, NewHandler(&mockReconciler{}), DefaultManagerConfig())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manager.Stop()

	if got := atomic.LoadInt32(&consumer.pendingCalls); got != 1 {
		t.Errorf("Pending called %d times, want 1", got)
	}
}

func TestManager_Start_ToleratesPendingCheckFailure(t *testing.T) {
	consumer := &mockConsumer{
		pendingFn: func(ctx context.Context, stream, group string) (int64, error) {
			return 0, errors.New("redis down")
		},
	}
	manager := NewManager(consumer, NewHandler(&mockReconciler{}), DefaultManagerConfig())

	// The backlog check is informational; a failure must not block startup.
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manager.Stop()
}

func TestManager_Start_FailsWhenGroupCannotBeCreated(t *testing.T) {
	consumer := &mockConsumer{
		ensureGroupFn: func(ctx context.Context, stream, group string) error {
			return errors.New("redis down")
		},
	}
	manager := NewManager(consumer, NewHandler(&mockReconciler{}), DefaultManagerConfig())

	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected error when the consumer group cannot be created")
	}
}
