package schema

import (
	"sort"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Schema is a map of parameter names to their expected types.
type Schema map[string]Type

// FromParameters builds the schema of a parameter list.
func FromParameters(params []domain.Parameter) Schema {
	s := make(Schema, len(params))
	for _, p := range params {
		s[p.Name] = ForParameter(p)
	}
	return s
}

// Validate checks values against the schema.
// Every present value must match its type and every key must be declared.
// Returns an AggregateError with all failures, ordered by parameter name.
func Validate(schema Schema, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value := values[key]
		typ, ok := schema[key]
		if !ok {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: "not a parameter",
				Value:  value,
			})
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateParams validates values against a parameter list.
func ValidateParams(params []domain.Parameter, values map[string]any) error {
	return Validate(FromParameters(params), values)
}

// WithDefaults returns values completed with the defaults of every parameter
// not present. The input map is not modified.
func WithDefaults(params []domain.Parameter, values map[string]any) map[string]any {
	out := make(map[string]any, len(params)+len(values))
	for _, p := range params {
		if p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}
