package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/homestack/pantry/internal/core/domain"
	"github.com/homestack/pantry/internal/port"
)

// TodoSyncer mirrors an item's restock need onto a single line of an external
// to-do list. It carries no state of its own; every call re-reads the list.
type TodoSyncer struct {
	todos port.TodoRepository
}

func NewTodoSyncer(todos port.TodoRepository) *TodoSyncer {
	return &TodoSyncer{todos: todos}
}

// CheckAndAddItem adds or renames the list entry for an item that has dropped
// to or below its restock threshold. Returns false on the gating no-op path
// and when the list backend fails; backend errors are logged, not propagated.
func (t *TodoSyncer) CheckAndAddItem(ctx context.Context, name string, item domain.Item) bool {
	if !item.AutoAddEnabled || item.Quantity > item.Threshold || item.TodoList == "" {
		return false
	}

	match, err := t.findMatch(ctx, item.TodoList, name)
	if err != nil {
		log.Printf("failed to add %q to todo list %q: %v", name, item.TodoList, err)
		return false
	}

	needed := item.Threshold - item.Quantity + 1
	text := annotatedName(name, needed)
	if match != nil {
		err = t.todos.RenameEntry(ctx, item.TodoList, match.Ref(), text)
	} else {
		err = t.todos.AddEntry(ctx, item.TodoList, text)
	}
	if err != nil {
		log.Printf("failed to add %q to todo list %q: %v", name, item.TodoList, err)
		return false
	}
	return true
}

// CheckAndRemoveItem removes the list entry once the item is restocked at or
// above its need, or lowers the annotated count after a partial restock.
// Returns false when no matching entry exists or the backend fails.
func (t *TodoSyncer) CheckAndRemoveItem(ctx context.Context, name string, item domain.Item) bool {
	if !item.AutoAddEnabled || item.TodoList == "" {
		return false
	}

	match, err := t.findMatch(ctx, item.TodoList, name)
	if err != nil {
		log.Printf("failed to remove %q from todo list %q: %v", name, item.TodoList, err)
		return false
	}
	if match == nil {
		return false
	}

	needed := item.Threshold - item.Quantity + 1
	if needed <= 0 {
		err = t.todos.RemoveEntry(ctx, item.TodoList, match.Ref())
	} else {
		err = t.todos.RenameEntry(ctx, item.TodoList, match.Ref(), annotatedName(name, needed))
	}
	if err != nil {
		log.Printf("failed to remove %q from todo list %q: %v", name, item.TodoList, err)
		return false
	}
	return true
}

func (t *TodoSyncer) findMatch(ctx context.Context, listID, name string) (*domain.TodoEntry, error) {
	entries, err := t.todos.ListIncomplete(ctx, listID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if nameMatches(entries[i].Summary, name) {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// nameMatches accepts an exact case-insensitive match or a prior annotated
// form, i.e. "Milk (x3)" matches item "milk" while "Milkshake" does not.
func nameMatches(summary, name string) bool {
	summary = strings.ToLower(strings.TrimSpace(summary))
	name = strings.ToLower(strings.TrimSpace(name))
	if summary == name {
		return true
	}
	return strings.HasPrefix(summary, name+" (x")
}

func annotatedName(name string, needed int) string {
	return fmt.Sprintf("%s (x%d)", name, needed)
}
