package domain

import "fmt"

// CardSignature lists the ports and parameters of a card, in declaration order.
type CardSignature struct {
	Inputs     []Port      `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
	Outputs    []Port      `json:"outputs" yaml:"outputs" mapstructure:"outputs"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// Clone returns a deep copy, so callers can never reach into a card's own slices.
func (s CardSignature) Clone() CardSignature {
	out := CardSignature{
		Inputs:  append([]Port(nil), s.Inputs...),
		Outputs: append([]Port(nil), s.Outputs...),
	}
	if s.Parameters != nil {
		out.Parameters = make([]Parameter, len(s.Parameters))
		for i, p := range s.Parameters {
			out.Parameters[i] = p.clone()
		}
	}
	return out
}

// Input returns the input port with the given name.
func (s CardSignature) Input(name string) (Port, bool) {
	return findPort(s.Inputs, name)
}

// Output returns the output port with the given name.
func (s CardSignature) Output(name string) (Port, bool) {
	return findPort(s.Outputs, name)
}

// Parameter returns the parameter with the given name.
func (s CardSignature) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// InputNames returns the input port names in order.
func (s CardSignature) InputNames() []string { return portNames(s.Inputs) }

// OutputNames returns the output port names in order.
func (s CardSignature) OutputNames() []string { return portNames(s.Outputs) }

// Series is the signature of "a then b": a's inputs, b's outputs, both parameter lists.
func (s CardSignature) Series(next CardSignature) CardSignature {
	return CardSignature{
		Inputs:     append([]Port(nil), s.Inputs...),
		Outputs:    append([]Port(nil), next.Outputs...),
		Parameters: UnionParameters(s.Parameters, next.Parameters),
	}
}

// Union is the signature of two cards fed the same input: inputs, outputs and
// parameters are unioned by name, first occurrence wins.
func (s CardSignature) Union(other CardSignature) CardSignature {
	return CardSignature{
		Inputs:     UnionPorts(s.Inputs, other.Inputs),
		Outputs:    UnionPorts(s.Outputs, other.Outputs),
		Parameters: UnionParameters(s.Parameters, other.Parameters),
	}
}

// UnionPorts concatenates two port lists keeping the first port of each name.
func UnionPorts(a, b []Port) []Port {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]Port, 0, len(a)+len(b))
	for _, list := range [][]Port{a, b} {
		for _, p := range list {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	return out
}

// UnionParameters concatenates two parameter lists keeping the first parameter of each name.
func UnionParameters(a, b []Parameter) []Parameter {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]Parameter, 0, len(a)+len(b))
	for _, list := range [][]Parameter{a, b} {
		for _, p := range list {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p.clone())
		}
	}
	return out
}

func findPort(ports []Port, name string) (Port, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

func portNames(ports []Port) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}

// Validate checks that port names are unique within the input and output lists,
// and parameter names within the parameter list.
func (s CardSignature) Validate() error {
	if err := uniqueNames("input", portNames(s.Inputs)); err != nil {
		return err
	}
	if err := uniqueNames("output", portNames(s.Outputs)); err != nil {
		return err
	}
	names := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		names[i] = p.Name
	}
	return uniqueNames("parameter", names)
}

func uniqueNames(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("%w: %s %q", ErrDuplicatePort, kind, n)
		}
		seen[n] = true
	}
	return nil
}
