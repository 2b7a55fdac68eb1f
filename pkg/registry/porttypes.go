package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cardflow/pkg/domain"
)

var builtinInfo = map[domain.PortType]domain.PortTypeInfo{
	domain.PortAudio:     {Label: "Audio", Color: "#22c55e", Description: "Sample buffers"},
	domain.PortMIDI:      {Label: "MIDI", Color: "#3b82f6", Description: "Raw MIDI messages"},
	domain.PortNotes:     {Label: "Notes", Color: "#6366f1", Description: "Note events"},
	domain.PortControl:   {Label: "Control", Color: "#f59e0b", Description: "Continuous control values"},
	domain.PortTrigger:   {Label: "Trigger", Color: "#ef4444", Description: "One-shot triggers"},
	domain.PortGate:      {Label: "Gate", Color: "#ec4899", Description: "On/off gates"},
	domain.PortClock:     {Label: "Clock", Color: "#14b8a6", Description: "Clock pulses"},
	domain.PortTransport: {Label: "Transport", Color: "#64748b", Description: "Play state and position"},
	domain.PortNumber:    {Label: "Number"},
	domain.PortBoolean:   {Label: "Boolean"},
	domain.PortString:    {Label: "String"},
	domain.PortAny:       {Label: "Any"},
}

// PortTypes maps port types to their display metadata.
// It is owned by the caller; create isolated instances with NewPortTypes.
// Safe for concurrent use.
type PortTypes struct {
	mu    sync.RWMutex
	types map[domain.PortType]domain.PortTypeInfo
}

// NewPortTypes creates a registry seeded with the built-in port types.
func NewPortTypes() *PortTypes {
	r := &PortTypes{}
	r.Reset()
	return r
}

// Register stores the display metadata for t, overwriting any previous entry.
// Types that are neither built-in nor namespaced are rejected.
func (r *PortTypes) Register(t domain.PortType, info domain.PortTypeInfo) error {
	if !t.IsBuiltin() && !t.IsNamespaced() {
		return fmt.Errorf("%w: %q", domain.ErrNotNamespaced, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t] = info
	return nil
}

// Lookup returns the metadata registered for t.
func (r *PortTypes) Lookup(t domain.PortType) (domain.PortTypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.types[t]
	return info, ok
}

// Types returns every registered type, sorted.
func (r *PortTypes) Types() []domain.PortType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PortType, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reset drops every custom registration and restores the built-in seed.
func (r *PortTypes) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types = make(map[domain.PortType]domain.PortTypeInfo, len(builtinInfo))
	for t, info := range builtinInfo {
		r.types[t] = info
	}
}
