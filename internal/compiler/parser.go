package compiler

import (
	"fmt"
	"os"

	"github.com/aretw0/cardflow/internal/dto"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
)

// Parser turns raw document bytes into a graph.
type Parser struct {
	resolver domain.CardResolver
}

// NewParser creates a parser. resolver materializes cards and may be nil.
func NewParser(resolver domain.CardResolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse guards, decodes and builds a graph from data.
func (p *Parser) Parse(data []byte, format dto.Format) (*graph.Graph, error) {
	return p.parse(data, format, "")
}

// ParseFile reads path and parses it in the format implied by its extension.
func (p *Parser) ParseFile(path string) (*graph.Graph, error) {
	format, err := dto.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return p.parse(data, format, path)
}

func (p *Parser) parse(data []byte, format dto.Format, filename string) (*graph.Graph, error) {
	clean, err := Sanitize(data)
	if err != nil {
		return nil, err
	}
	doc, err := dto.Decode(clean, format, filename)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromDocument(doc, p.resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}
