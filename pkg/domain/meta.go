package domain

// Category groups cards in catalogs and pickers.
type Category string

const (
	CategoryGenerators Category = "generators"
	CategoryEffects    Category = "effects"
	CategoryTransforms Category = "transforms"
	CategoryFilters    Category = "filters"
	CategoryRouting    Category = "routing"
	CategoryAnalysis   Category = "analysis"
	CategoryUtilities  Category = "utilities"
	CategoryCustom     Category = "custom"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGenerators, CategoryEffects, CategoryTransforms, CategoryFilters,
		CategoryRouting, CategoryAnalysis, CategoryUtilities, CategoryCustom:
		return true
	}
	return false
}

// CardMeta identifies a card. Id uniqueness is the caller's responsibility.
type CardMeta struct {
	ID          string   `json:"id" yaml:"id" mapstructure:"id"`
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Category    Category `json:"category" yaml:"category" mapstructure:"category"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty" mapstructure:"author"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	Deprecated  bool     `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated"`
	Replacement string   `json:"replacement,omitempty" yaml:"replacement,omitempty" mapstructure:"replacement"`

	// SideEffects marks cards with observable effects (logging, metering, I/O).
	// The graph optimizer never bypasses them.
	SideEffects bool `json:"side_effects,omitempty" yaml:"side_effects,omitempty" mapstructure:"side_effects"`
}

// Clone returns a copy that shares no slices with m.
func (m CardMeta) Clone() CardMeta {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}
