package card

import (
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// DecodeParams validates a parameter bag against sig, fills in defaults and
// decodes the result into out, which must be a pointer to a struct using
// `mapstructure` tags. Values are weakly typed: "0.5" decodes into a float64 field.
func DecodeParams(sig domain.CardSignature, values map[string]any, out any) error {
	if err := schema.ValidateParams(sig.Parameters, values); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := decoder.Decode(schema.WithDefaults(sig.Parameters, values)); err != nil {
		return fmt.Errorf("failed to decode params: %w", err)
	}
	return nil
}
