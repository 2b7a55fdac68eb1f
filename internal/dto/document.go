package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Decode parses a graph document in the given format. filename is used in
// HCL diagnostics and may be empty.
func Decode(data []byte, format Format, filename string) (graph.Document, error) {
	switch format {
	case FormatJSON:
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return graph.Document{}, fmt.Errorf("failed to parse JSON document: %w", err)
		}
		return DecodeMap(raw)
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return graph.Document{}, fmt.Errorf("failed to parse YAML document: %w", err)
		}
		return DecodeMap(raw)
	case FormatHCL:
		return DecodeHCL(data, filename)
	}
	return graph.Document{}, fmt.Errorf("unsupported document format %q", format)
}

// DecodeMap decodes a generic map (from JSON, YAML or front matter) into a
// graph document. Scalars are weakly typed, so "10" is accepted for a position.
func DecodeMap(raw map[string]any) (graph.Document, error) {
	var doc graph.Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return graph.Document{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return graph.Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// Encode renders doc in the given format.
func Encode(doc graph.Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode YAML document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatHCL:
		return EncodeHCL(doc)
	}
	return nil, fmt.Errorf("unsupported document format %q", format)
}
