package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisSinkPublishes(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "pantry-test:pantry_updated_kitchen")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink := NewRedisSink(client, "pantry-test")
	if err := sink.Fire(ctx, "pantry_updated_kitchen", map[string]any{"source": "test"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload != `{"source":"test"}` {
			t.Errorf("unexpected payload: %s", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink()
	if err := sink.Fire(context.Background(), "pantry_updated", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
