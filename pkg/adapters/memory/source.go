package memory

import (
	"context"
	"sort"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Source implements ports.CardSource over a fixed set of cards.
// Useful for tests and embedding.
type Source struct {
	cards map[string]domain.Card
}

// NewSource creates a source holding cards, keyed by their meta id.
// A later card with the same id replaces an earlier one.
func NewSource(cards ...domain.Card) *Source {
	m := make(map[string]domain.Card, len(cards))
	for _, c := range cards {
		m[c.Meta().ID] = c
	}
	return &Source{cards: m}
}

// LoadCards returns the cards sorted by id.
func (s *Source) LoadCards(_ context.Context) ([]domain.Card, error) {
	ids, _ := s.ListCards(context.Background())
	out := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.cards[id])
	}
	return out, nil
}

// ListCards returns the card ids, sorted.
func (s *Source) ListCards(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.cards))
	for id := range s.cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
