package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/aretw0/cardflow/pkg/domain"
)

// Cards is the side table of materialised cards keyed by card id.
// Graph nodes only hold card ids; Cards resolves them lazily.
// Safe for concurrent use.
type Cards struct {
	mu    sync.RWMutex
	cards map[string]domain.Card
}

// NewCards creates an empty card table.
func NewCards() *Cards {
	return &Cards{
		cards: make(map[string]domain.Card),
	}
}

// Register adds a card under its meta id.
// If a card with the same id exists, it is overwritten.
// The signature must have unique port names and a non-empty version must be valid semver.
func (r *Cards) Register(c domain.Card) error {
	meta := c.Meta()
	if meta.ID == "" {
		return fmt.Errorf("card meta missing id")
	}
	if err := c.Signature().Validate(); err != nil {
		return fmt.Errorf("card %s: %w", meta.ID, err)
	}
	if meta.Version != "" {
		if _, err := semver.NewVersion(meta.Version); err != nil {
			return fmt.Errorf("%w: card %s version %q: %v", domain.ErrInvalidVersion, meta.ID, meta.Version, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[meta.ID] = c
	return nil
}

// MustRegister is Register for static setup code. It panics on error.
func (r *Cards) MustRegister(cards ...domain.Card) *Cards {
	for _, c := range cards {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Resolve implements domain.CardResolver.
func (r *Cards) Resolve(cardID string) (domain.Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[cardID]
	return c, ok
}

// Get is Resolve returning domain.ErrCardNotFound.
func (r *Cards) Get(cardID string) (domain.Card, error) {
	c, ok := r.Resolve(cardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCardNotFound, cardID)
	}
	return c, nil
}

// IDs returns the registered card ids, sorted.
func (r *Cards) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.cards))
	for id := range r.cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Matching returns the registered card ids whose version satisfies constraint
// (e.g. ">= 1.2, < 2"). Cards without a version never match.
func (r *Cards) Matching(constraint string) ([]string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}

	var out []string
	for _, id := range r.IDs() {
		card, _ := r.Resolve(id)
		v := card.Meta().Version
		if v == "" {
			continue
		}
		parsed, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		if c.Check(parsed) {
			out = append(out, id)
		}
	}
	return out, nil
}
