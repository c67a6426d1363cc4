package port

import (
	"context"

	"github.com/homestack/pantry/internal/core/domain"
)

type TodoRepository interface {
	// ListIncomplete returns the not-completed entries of a to-do list
	ListIncomplete(ctx context.Context, listID string) ([]domain.TodoEntry, error)

	// AddEntry appends a new entry with the given text
	AddEntry(ctx context.Context, listID, text string) error

	// RenameEntry rewrites the text of the entry addressed by ref,
	// where ref is a stable id when available, else the current summary
	RenameEntry(ctx context.Context, listID, ref, newText string) error

	// RemoveEntry deletes the entry addressed by ref
	RemoveEntry(ctx context.Context, listID, ref string) error
}
