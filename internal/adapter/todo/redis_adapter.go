package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/homestack/pantry/internal/core/domain"
)

const (
	listKeyPrefix   = "todo:"
	statusNeeded    = "needs_action"
	statusCompleted = "completed"
)

type entryPayload struct {
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

// RedisAdapter backs a to-do list with one Redis hash per list, keyed by a
// generated uuid so entries keep a stable id across renames.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) ListIncomplete(ctx context.Context, listID string) ([]domain.TodoEntry, error) {
	fields, err := r.client.HGetAll(ctx, listKeyPrefix+listID).Result()
	if err != nil {
		return nil, fmt.Errorf("list todo entries: %w", err)
	}

	entries := make([]domain.TodoEntry, 0, len(fields))
	for id, raw := range fields {
		var p entryPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode todo entry %s: %w", id, err)
		}
		if strings.EqualFold(p.Status, statusCompleted) {
			continue
		}
		entries = append(entries, domain.TodoEntry{ID: id, Summary: p.Summary})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Summary != entries[j].Summary {
			return entries[i].Summary < entries[j].Summary
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (r *RedisAdapter) AddEntry(ctx context.Context, listID, text string) error {
	raw, err := json.Marshal(entryPayload{Summary: text, Status: statusNeeded})
	if err != nil {
		return fmt.Errorf("encode todo entry: %w", err)
	}
	id := uuid.New().String()
	if err := r.client.HSet(ctx, listKeyPrefix+listID, id, raw).Err(); err != nil {
		return fmt.Errorf("add todo entry: %w", err)
	}
	return nil
}

func (r *RedisAdapter) RenameEntry(ctx context.Context, listID, ref, newText string) error {
	key := listKeyPrefix + listID
	id, p, err := r.resolve(ctx, key, ref)
	if err != nil {
		return err
	}
	p.Summary = newText
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode todo entry: %w", err)
	}
	if err := r.client.HSet(ctx, key, id, raw).Err(); err != nil {
		return fmt.Errorf("rename todo entry: %w", err)
	}
	return nil
}

func (r *RedisAdapter) RemoveEntry(ctx context.Context, listID, ref string) error {
	key := listKeyPrefix + listID
	id, _, err := r.resolve(ctx, key, ref)
	if err != nil {
		return err
	}
	if err := r.client.HDel(ctx, key, id).Err(); err != nil {
		return fmt.Errorf("remove todo entry: %w", err)
	}
	return nil
}

// resolve maps a ref to the hash field holding the entry: the ref is tried as
// an id first, then matched against entry summaries.
func (r *RedisAdapter) resolve(ctx context.Context, key, ref string) (string, entryPayload, error) {
	raw, err := r.client.HGet(ctx, key, ref).Result()
	if err == nil {
		var p entryPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return "", entryPayload{}, fmt.Errorf("decode todo entry %s: %w", ref, err)
		}
		return ref, p, nil
	}
	if err != redis.Nil {
		return "", entryPayload{}, fmt.Errorf("look up todo entry: %w", err)
	}

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return "", entryPayload{}, fmt.Errorf("look up todo entry: %w", err)
	}
	for id, rawEntry := range fields {
		var p entryPayload
		if err := json.Unmarshal([]byte(rawEntry), &p); err != nil {
			continue
		}
		if p.Summary == ref {
			return id, p, nil
		}
	}
	return "", entryPayload{}, fmt.Errorf("todo entry %q not found", ref)
}
