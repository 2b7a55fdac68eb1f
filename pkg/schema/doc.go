// Package schema validates card parameter values.
//
// It defines a small type system mirroring domain.ParameterType (number, boolean,
// string, enum) where each Type knows how to check a single value. A Schema maps
// parameter names to types and is usually derived from a card signature:
//
//	s := schema.FromParameters(card.Signature().Parameters)
//	if err := schema.Validate(s, map[string]any{"cutoff": 1200.0}); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each failing parameter
//	    }
//	}
//
// Schemas can also be parsed from type strings, which is how graph documents
// declare ad-hoc parameters:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "cutoff": "number",
//	    "mode":   "enum(lowpass|highpass)",
//	})
//
// Missing values are not errors: parameters always have a default. Unknown keys are.
package schema
