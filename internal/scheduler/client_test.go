package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string      { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestClientEnqueuesTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	err = client.ScheduleScan(ctx, AIScanPayload{
		TenantID:    uuid.NewString(),
		TriggerType: "scheduled",
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("schedule scan failed: %v", err)
	}

	err = client.EnqueueHealthRecalc(ctx, HealthRecalcPayload{
		TenantID:   uuid.NewString(),
		CustomerID: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("enqueue health recalc failed: %v", err)
	}

	if len(mr.Keys()) == 0 {
		t.Error("expected enqueued tasks in redis, found no keys")
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{redisURL: ""}); err == nil {
		t.Error("expected error for missing redis url")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	payload := AIScanPayload{TenantID: uuid.NewString(), TriggerType: "webhook"}

	task, err := NewAIScanTask(payload)
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	parsed, err := ParseAIScanPayload(task)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != payload {
		t.Errorf("round trip mismatch: got %+v, want %+v", parsed, payload)
	}
}
