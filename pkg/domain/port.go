package domain

import "strings"

// PortType is an opaque tag describing the kind of data a port carries.
type PortType string

// Built-in port types. Any other type must be namespaced (see IsNamespaced).
const (
	PortAudio     PortType = "audio"
	PortMIDI      PortType = "midi"
	PortNotes     PortType = "notes"
	PortControl   PortType = "control"
	PortTrigger   PortType = "trigger"
	PortGate      PortType = "gate"
	PortClock     PortType = "clock"
	PortTransport PortType = "transport"

	// Legacy scalar types.
	PortNumber  PortType = "number"
	PortBoolean PortType = "boolean"
	PortString  PortType = "string"
	PortAny     PortType = "any"
)

// NamespaceSeparator separates the namespace from the local name of a custom
// port type, e.g. "vendor:spectrum".
const NamespaceSeparator = ":"

// BuiltinPortTypes lists the port types every registry is seeded with.
func BuiltinPortTypes() []PortType {
	return []PortType{
		PortAudio, PortMIDI, PortNotes, PortControl, PortTrigger, PortGate,
		PortClock, PortTransport, PortNumber, PortBoolean, PortString, PortAny,
	}
}

// IsBuiltin reports whether t is one of the built-in port types.
func (t PortType) IsBuiltin() bool {
	for _, b := range BuiltinPortTypes() {
		if b == t {
			return true
		}
	}
	return false
}

// IsNamespaced reports whether t carries a namespace ("ns:name" or "ns/name").
func (t PortType) IsNamespaced() bool {
	s := string(t)
	return strings.Contains(s, NamespaceSeparator) || strings.Contains(s, "/")
}

// PortTypeInfo is the display metadata stored for a port type.
type PortTypeInfo struct {
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Port is a named, typed input or output slot on a card signature.
type Port struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Type        PortType `json:"type" yaml:"type" mapstructure:"type"`
	Optional    bool     `json:"optional,omitempty" yaml:"optional,omitempty" mapstructure:"optional"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}
