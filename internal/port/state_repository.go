package port

import (
	"context"

	"github.com/homestack/pantry/internal/core/domain"
)

type StateRepository interface {
	// Load returns the stored document, or nil when nothing has been stored yet
	Load(ctx context.Context) (*domain.Document, error)

	// Save persists the entire document, replacing any previous snapshot
	Save(ctx context.Context, doc *domain.Document) error
}
