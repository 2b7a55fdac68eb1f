package ports

import (
	"context"

	"github.com/aretw0/cardflow/pkg/domain"
)

// CardSource defines how card descriptors are retrieved.
// This allows the catalog storage (Loam, FS, Memory) to be decoupled.
type CardSource interface {
	// LoadCards returns every card the source describes.
	LoadCards(ctx context.Context) ([]domain.Card, error)

	// ListCards returns the ids of the described cards.
	ListCards(ctx context.Context) ([]string, error)
}
