package loam

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// CardDescriptor is the front matter of a card document:
//
//	---
//	id: lowpass
//	name: Low-pass filter
//	category: filters
//	version: 1.2.0
//	inputs:
//	  - {name: in, type: audio}
//	outputs:
//	  - {name: out, type: audio}
//	parameters:
//	  - {name: cutoff, type: number, min: 20, max: 20000, default: 1000}
//	---
//	Free text becomes the description when none is set.
//
// Ports and parameters stay generic maps until Signature decodes them, so
// numeric values survive whatever representation the serializer chose.
type CardDescriptor struct {
	ID          string           `json:"id" yaml:"id" mapstructure:"id"`
	Name        string           `json:"name" yaml:"name" mapstructure:"name"`
	Category    string           `json:"category" yaml:"category" mapstructure:"category"`
	Tags        []string         `json:"tags" yaml:"tags" mapstructure:"tags"`
	Description string           `json:"description" yaml:"description" mapstructure:"description"`
	Author      string           `json:"author" yaml:"author" mapstructure:"author"`
	Version     string           `json:"version" yaml:"version" mapstructure:"version"`
	Deprecated  bool             `json:"deprecated" yaml:"deprecated" mapstructure:"deprecated"`
	Replacement string           `json:"replacement" yaml:"replacement" mapstructure:"replacement"`
	SideEffects bool             `json:"side_effects" yaml:"side_effects" mapstructure:"side_effects"`
	Inputs      []map[string]any `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
	Outputs     []map[string]any `json:"outputs" yaml:"outputs" mapstructure:"outputs"`
	Parameters  []map[string]any `json:"parameters" yaml:"parameters" mapstructure:"parameters"`
}

// Meta converts the descriptor into card metadata. An unknown category
// falls back to custom; a malformed version is an error.
func (d CardDescriptor) Meta() (domain.CardMeta, error) {
	meta := domain.CardMeta{
		ID:          d.ID,
		Name:        d.Name,
		Category:    domain.Category(strings.ToLower(d.Category)),
		Tags:        d.Tags,
		Description: d.Description,
		Author:      d.Author,
		Version:     d.Version,
		Deprecated:  d.Deprecated,
		Replacement: d.Replacement,
		SideEffects: d.SideEffects,
	}
	if meta.Name == "" {
		meta.Name = meta.ID
	}
	if !meta.Category.Valid() {
		meta.Category = domain.CategoryCustom
	}
	if d.Version != "" {
		if _, err := semver.NewVersion(d.Version); err != nil {
			return domain.CardMeta{}, fmt.Errorf("%w: card %s version %q: %v", domain.ErrInvalidVersion, d.ID, d.Version, err)
		}
	}
	return meta, nil
}

// Signature decodes the descriptor's ports and parameters.
func (d CardDescriptor) Signature() (domain.CardSignature, error) {
	var sig domain.CardSignature
	if err := decodeList(d.Inputs, &sig.Inputs); err != nil {
		return sig, fmt.Errorf("inputs: %w", err)
	}
	if err := decodeList(d.Outputs, &sig.Outputs); err != nil {
		return sig, fmt.Errorf("outputs: %w", err)
	}
	if err := decodeList(d.Parameters, &sig.Parameters); err != nil {
		return sig, fmt.Errorf("parameters: %w", err)
	}
	if err := sig.Validate(); err != nil {
		return sig, err
	}
	return sig, nil
}

func decodeList(raw []map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	items := make([]any, len(raw))
	for i, m := range raw {
		items[i] = normalize(m)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}

// normalize turns json.Number (strict serializers) into float64 and YAML's
// map[any]any into map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, sub := range t {
			out[k] = normalize(sub)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, sub := range t {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, sub := range t {
			out[i] = normalize(sub)
		}
		return out
	}
	return v
}
