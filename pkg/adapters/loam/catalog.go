package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/cardflow/pkg/card"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/registry"
	"github.com/aretw0/loam"
)

// Catalog adapts a Loam repository of card descriptors to ports.CardSource.
// Cards it loads carry a signature but pass their input through unchanged:
// the real processing lives outside the graph engine.
type Catalog struct {
	Repo *loam.TypedRepository[CardDescriptor]
}

// New creates a catalog over an existing typed repository.
func New(repo *loam.TypedRepository[CardDescriptor]) *Catalog {
	return &Catalog{Repo: repo}
}

// Open initializes a read-only Loam repository at path.
// Strict mode keeps numbers consistent across Markdown, YAML and JSON documents.
func Open(path string, opts ...loam.Option) (*Catalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	opts = append([]loam.Option{loam.WithStrict(true), loam.WithReadOnly(true)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[CardDescriptor](repo)), nil
}

// Descriptor returns the descriptor of one card, with its id normalized.
func (c *Catalog) Descriptor(ctx context.Context, id string) (CardDescriptor, error) {
	doc, err := c.Repo.Get(ctx, id)
	if err != nil {
		return CardDescriptor{}, fmt.Errorf("%w: %s: %v", domain.ErrCardNotFound, id, err)
	}
	return complete(doc.ID, doc.Data, doc.Content), nil
}

// Card materializes one card.
func (c *Catalog) Card(ctx context.Context, id string) (domain.Card, error) {
	d, err := c.Descriptor(ctx, id)
	if err != nil {
		return nil, err
	}
	return build(d)
}

// ListCards lists the card ids in the repository.
// Two documents declaring the same id are an error.
func (c *Catalog) ListCards(ctx context.Context) ([]string, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadCards materializes every card in the repository.
func (c *Catalog) LoadCards(ctx context.Context) ([]domain.Card, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	cards := make([]domain.Card, 0, len(docs))
	for _, doc := range docs {
		d := complete(doc.ID, doc.Data, doc.Content)
		if existingPath, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", d.ID, existingPath, doc.ID)
		}
		seen[d.ID] = doc.ID

		cd, err := build(d)
		if err != nil {
			return nil, fmt.Errorf("card %s (%s): %w", d.ID, doc.ID, err)
		}
		cards = append(cards, cd)
	}
	return cards, nil
}

// Registry loads every card into a fresh card table.
func (c *Catalog) Registry(ctx context.Context) (*registry.Cards, error) {
	cards, err := c.LoadCards(ctx)
	if err != nil {
		return nil, err
	}
	reg := registry.NewCards()
	for _, cd := range cards {
		if err := reg.Register(cd); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Watch emits the id of every changed descriptor document until ctx is done.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func complete(docID string, d CardDescriptor, content string) CardDescriptor {
	if d.ID == "" {
		d.ID = docID
	}
	d.ID = trimExtension(d.ID)
	if d.Description == "" {
		d.Description = strings.TrimSpace(content)
	}
	return d
}

func build(d CardDescriptor) (domain.Card, error) {
	meta, err := d.Meta()
	if err != nil {
		return nil, err
	}
	sig, err := d.Signature()
	if err != nil {
		return nil, err
	}
	return card.Passthrough(meta, sig).Erase(), nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
