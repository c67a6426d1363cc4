package todo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
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

func testList(t *testing.T, client *redis.Client) string {
	listID := "test-" + uuid.New().String()
	t.Cleanup(func() {
		client.Del(context.Background(), listKeyPrefix+listID)
	})
	return listID
}

func TestAddAndListEntries(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	listID := testList(t, client)

	if err := adapter.AddEntry(ctx, listID, "milk (x3)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := adapter.AddEntry(ctx, listID, "bread"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := adapter.ListIncomplete(ctx, listID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Summary != "bread" || entries[1].Summary != "milk (x3)" {
		t.Errorf("unexpected entries: %v", entries)
	}
	if entries[0].ID == "" || entries[1].ID == "" {
		t.Error("expected stable ids on entries")
	}
}

func TestListFiltersCompleted(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	listID := testList(t, client)

	client.HSet(ctx, listKeyPrefix+listID, "done-entry",
		`{"summary": "milk (x2)", "status": "completed"}`)
	adapter.AddEntry(ctx, listID, "eggs")

	entries, err := adapter.ListIncomplete(ctx, listID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Summary != "eggs" {
		t.Errorf("expected only incomplete entries, got %v", entries)
	}
}

func TestRenameEntryByIDAndSummary(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	listID := testList(t, client)

	adapter.AddEntry(ctx, listID, "milk (x2)")
	entries, _ := adapter.ListIncomplete(ctx, listID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	// By id
	if err := adapter.RenameEntry(ctx, listID, entries[0].ID, "milk (x3)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ = adapter.ListIncomplete(ctx, listID)
	if entries[0].Summary != "milk (x3)" {
		t.Errorf("expected renamed summary, got %q", entries[0].Summary)
	}

	// By summary
	if err := adapter.RenameEntry(ctx, listID, "milk (x3)", "milk (x1)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ = adapter.ListIncomplete(ctx, listID)
	if entries[0].Summary != "milk (x1)" {
		t.Errorf("expected renamed summary, got %q", entries[0].Summary)
	}
}

func TestRemoveEntry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	listID := testList(t, client)

	adapter.AddEntry(ctx, listID, "milk (x2)")
	if err := adapter.RemoveEntry(ctx, listID, "milk (x2)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ := adapter.ListIncomplete(ctx, listID)
	if len(entries) != 0 {
		t.Errorf("expected empty list, got %v", entries)
	}

	if err := adapter.RemoveEntry(ctx, listID, "ghost"); err == nil {
		t.Error("expected error for unknown entry")
	}
}
