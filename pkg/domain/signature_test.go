package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortType_Namespacing(t *testing.T) {
	tests := []struct {
		typ        PortType
		builtin    bool
		namespaced bool
	}{
		{PortAudio, true, false},
		{PortNumber, true, false},
		{"vendor:spectrum", false, true},
		{"vendor/spectrum", false, true},
		{"spectrum", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.builtin, tt.typ.IsBuiltin())
			assert.Equal(t, tt.namespaced, tt.typ.IsNamespaced())
		})
	}
}

func TestCardSignature_Series(t *testing.T) {
	a := CardSignature{
		Inputs:     []Port{{Name: "in", Type: PortMIDI}},
		Outputs:    []Port{{Name: "notes", Type: PortNotes}},
		Parameters: []Parameter{{Name: "gain", Type: ParamNumber, Default: 1.0}},
	}
	b := CardSignature{
		Inputs:     []Port{{Name: "notes", Type: PortNotes}},
		Outputs:    []Port{{Name: "out", Type: PortAudio}},
		Parameters: []Parameter{{Name: "gain", Type: ParamNumber}, {Name: "cutoff", Type: ParamNumber}},
	}

	s := a.Series(b)
	assert.Equal(t, []string{"in"}, s.InputNames())
	assert.Equal(t, []string{"out"}, s.OutputNames())
	require.Len(t, s.Parameters, 2)
	assert.Equal(t, "gain", s.Parameters[0].Name)
	assert.Equal(t, 1.0, s.Parameters[0].Default, "first occurrence wins")
	assert.Equal(t, "cutoff", s.Parameters[1].Name)
}

func TestCardSignature_Union(t *testing.T) {
	a := CardSignature{
		Inputs:  []Port{{Name: "in", Type: PortAudio}},
		Outputs: []Port{{Name: "left", Type: PortAudio}},
	}
	b := CardSignature{
		Inputs:  []Port{{Name: "in", Type: PortAudio}},
		Outputs: []Port{{Name: "right", Type: PortAudio}},
	}

	u := a.Union(b)
	assert.Equal(t, []string{"in"}, u.InputNames())
	assert.Equal(t, []string{"left", "right"}, u.OutputNames())
	assert.Nil(t, u.Parameters)
}

func TestCardSignature_CloneIsDeep(t *testing.T) {
	sig := CardSignature{
		Inputs:     []Port{{Name: "in", Type: PortAudio}},
		Parameters: []Parameter{{Name: "mix", Type: ParamNumber, Min: Float(0), Options: []string{"a"}}},
	}
	c := sig.Clone()
	c.Inputs[0].Name = "changed"
	*c.Parameters[0].Min = 5
	c.Parameters[0].Options[0] = "b"

	assert.Equal(t, "in", sig.Inputs[0].Name)
	assert.Equal(t, 0.0, *sig.Parameters[0].Min)
	assert.Equal(t, "a", sig.Parameters[0].Options[0])
}

func TestCardSignature_Validate(t *testing.T) {
	ok := CardSignature{
		Inputs:  []Port{{Name: "in"}},
		Outputs: []Port{{Name: "in"}},
	}
	assert.NoError(t, ok.Validate(), "same name on input and output lists is allowed")

	dup := CardSignature{Inputs: []Port{{Name: "in"}, {Name: "in"}}}
	assert.ErrorIs(t, dup.Validate(), ErrDuplicatePort)
}

func TestCardState_Next(t *testing.T) {
	var none *CardState
	s1 := none.Next("a")
	assert.Equal(t, 1, s1.Version)

	s0 := NewCardState("init")
	assert.Equal(t, 0, s0.Version)
	s2 := s0.Next("b").Next("c")
	assert.Equal(t, 2, s2.Version)
	assert.Equal(t, "c", s2.Value)
	assert.True(t, s2.Changed(s0))
	assert.False(t, s2.Changed(s2))
}
