package domain

// ParameterType enumerates the value kinds a parameter can hold.
type ParameterType string

const (
	ParamNumber  ParameterType = "number"
	ParamBoolean ParameterType = "boolean"
	ParamString  ParameterType = "string"
	ParamEnum    ParameterType = "enum"
)

// Parameter describes a tunable value of a card.
// Min, Max and Step are only meaningful for number parameters; Options for enums.
type Parameter struct {
	Name        string        `json:"name" yaml:"name" mapstructure:"name"`
	Type        ParameterType `json:"type" yaml:"type" mapstructure:"type"`
	Default     any           `json:"default" yaml:"default" mapstructure:"default"`
	Min         *float64      `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max         *float64      `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Step        *float64      `json:"step,omitempty" yaml:"step,omitempty" mapstructure:"step"`
	Options     []string      `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Label       string        `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Unit        string        `json:"unit,omitempty" yaml:"unit,omitempty" mapstructure:"unit"`
	Automatable bool          `json:"automatable,omitempty" yaml:"automatable,omitempty" mapstructure:"automatable"`
}

func (p Parameter) clone() Parameter {
	out := p
	if p.Min != nil {
		v := *p.Min
		out.Min = &v
	}
	if p.Max != nil {
		v := *p.Max
		out.Max = &v
	}
	if p.Step != nil {
		v := *p.Step
		out.Step = &v
	}
	if p.Options != nil {
		out.Options = append([]string(nil), p.Options...)
	}
	return out
}

// Float returns a pointer to v. Handy for Parameter.Min/Max/Step literals.
func Float(v float64) *float64 { return &v }
