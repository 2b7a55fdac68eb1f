package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks values in node data,
// edge data and graph metadata whose key matches any of the patterns.
// Nested maps are walked. The caller's snapshot is never modified.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, key string, snap graph.Snapshot) error {
	if snap.Graph == nil {
		return m.next.Save(ctx, key, snap)
	}

	// ToDocument deep-copies every data bag.
	doc := graph.ToDocument(snap.Graph)
	maskMap(doc.Meta, m.patterns)
	for _, n := range doc.Nodes {
		maskMap(n.Data, m.patterns)
	}
	for _, e := range doc.Edges {
		maskMap(e.Data, m.patterns)
	}

	masked, err := graph.FromDocument(doc, snap.Graph)
	if err != nil {
		return fmt.Errorf("failed to rebuild redacted graph: %w", err)
	}
	snap.Graph = masked
	return m.next.Save(ctx, key, snap)
}

func (m *redactMiddleware) Load(ctx context.Context, key string) (graph.Snapshot, error) {
	return m.next.Load(ctx, key)
}

func (m *redactMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *redactMiddleware) List(ctx context.Context, prefix string) ([]string, error) {
	return m.next.List(ctx, prefix)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		matched := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if subMap, ok := item.(map[string]any); ok {
					maskMap(subMap, patterns)
				}
			}
		}
	}
}
