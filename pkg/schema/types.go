package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Type defines the contract for parameter value validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "number", "enum(a|b)").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// NumberType validates numeric values against an optional range and step grid.
type NumberType struct {
	Min  *float64
	Max  *float64
	Step *float64
}

func (t *NumberType) Name() string { return string(domain.ParamNumber) }

func (t *NumberType) Validate(value any) error {
	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	if t.Min != nil && f < *t.Min {
		return fmt.Errorf("%v is below minimum %v", f, *t.Min)
	}
	if t.Max != nil && f > *t.Max {
		return fmt.Errorf("%v is above maximum %v", f, *t.Max)
	}
	if t.Step != nil && *t.Step > 0 {
		base := 0.0
		if t.Min != nil {
			base = *t.Min
		}
		steps := (f - base) / *t.Step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return fmt.Errorf("%v is not a multiple of step %v", f, *t.Step)
		}
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return string(domain.ParamBoolean) }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return string(domain.ParamString) }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// EnumType validates that a string is one of a fixed set of options.
type EnumType struct {
	Options []string
}

func (t *EnumType) Name() string {
	return fmt.Sprintf("enum(%s)", strings.Join(t.Options, "|"))
}

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected one of [%s], got %T", strings.Join(t.Options, ", "), value)
	}
	for _, o := range t.Options {
		if o == s {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of [%s]", s, strings.Join(t.Options, ", "))
}

// --- Factory Functions ---

// Number creates an unbounded number validator.
func Number() Type { return &NumberType{} }

// Range creates a number validator bounded to [min, max].
func Range(min, max float64) Type { return &NumberType{Min: &min, Max: &max} }

// Bool creates a boolean validator.
func Bool() Type { return &BoolType{} }

// String creates a string validator.
func String() Type { return &StringType{} }

// Enum creates an enum validator.
func Enum(options ...string) Type { return &EnumType{Options: options} }

// ForParameter derives the validator for a parameter declaration.
// Unknown parameter types validate nothing.
func ForParameter(p domain.Parameter) Type {
	switch p.Type {
	case domain.ParamNumber:
		return &NumberType{Min: p.Min, Max: p.Max, Step: p.Step}
	case domain.ParamBoolean:
		return Bool()
	case domain.ParamString:
		return String()
	case domain.ParamEnum:
		return Enum(p.Options...)
	default:
		return anyType{}
	}
}

// ParseType converts a type name to a Type.
// Supports "number", "boolean", "string", "enum(a|b|c)" and "any", the name
// ForParameter gives to unrecognised parameter types.
//
// Names carry no bounds: a NumberType parsed back from "number" has lost its
// Min, Max and Step.
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if strings.HasPrefix(typeStr, "enum(") && strings.HasSuffix(typeStr, ")") {
		inner := typeStr[len("enum(") : len(typeStr)-1]
		if inner == "" {
			return nil, fmt.Errorf("enum without options")
		}
		return Enum(strings.Split(inner, "|")...), nil
	}

	switch typeStr {
	case "number", "float", "int":
		return Number(), nil
	case "boolean", "bool":
		return Bool(), nil
	case "string":
		return String(), nil
	case "any":
		return anyType{}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of parameter names to type strings into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

type anyType struct{}

func (anyType) Name() string         { return "any" }
func (anyType) Validate(_ any) error { return nil }

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
