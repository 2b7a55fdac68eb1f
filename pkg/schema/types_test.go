package schema

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberType(t *testing.T) {
	typ := &NumberType{Min: domain.Float(20), Max: domain.Float(20000)}

	assert.NoError(t, typ.Validate(440.0))
	assert.NoError(t, typ.Validate(1000))
	assert.Error(t, typ.Validate(10.0))
	assert.Error(t, typ.Validate(25000.0))
	assert.Error(t, typ.Validate("440"))
}

func TestNumberType_Step(t *testing.T) {
	typ := &NumberType{Min: domain.Float(0), Max: domain.Float(1), Step: domain.Float(0.25)}

	assert.NoError(t, typ.Validate(0.5))
	assert.NoError(t, typ.Validate(1.0))
	assert.Error(t, typ.Validate(0.3))
}

func TestEnumType(t *testing.T) {
	typ := Enum("sine", "square", "saw")

	assert.Equal(t, "enum(sine|square|saw)", typ.Name())
	assert.NoError(t, typ.Validate("square"))
	assert.Error(t, typ.Validate("triangle"))
	assert.Error(t, typ.Validate(1))
}

func TestForParameter(t *testing.T) {
	tests := []struct {
		name  string
		param domain.Parameter
		ok    any
		bad   any
	}{
		{"number", domain.Parameter{Name: "gain", Type: domain.ParamNumber, Min: domain.Float(0), Max: domain.Float(2)}, 1.0, 3.0},
		{"boolean", domain.Parameter{Name: "bypass", Type: domain.ParamBoolean}, true, "yes"},
		{"string", domain.Parameter{Name: "label", Type: domain.ParamString}, "kick", 4},
		{"enum", domain.Parameter{Name: "mode", Type: domain.ParamEnum, Options: []string{"lp", "hp"}}, "hp", "bp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := ForParameter(tt.param)
			assert.NoError(t, typ.Validate(tt.ok))
			assert.Error(t, typ.Validate(tt.bad))
		})
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("enum(a|b)")
	require.NoError(t, err)
	assert.Equal(t, "enum(a|b)", typ.Name())

	typ, err = ParseType(" bool ")
	require.NoError(t, err)
	assert.Equal(t, "boolean", typ.Name())

	_, err = ParseType("enum()")
	assert.Error(t, err)

	typ, err = ParseType("any")
	require.NoError(t, err)
	assert.NoError(t, typ.Validate([]int{1, 2}))

	_, err = ParseType("matrix")
	assert.Error(t, err)
}

func TestSchema_JSONRoundTripUnknownParameter(t *testing.T) {
	s := FromParameters([]domain.Parameter{
		{Name: "curve", Type: "wavetable"},
		{Name: "gain", Type: domain.ParamNumber, Min: domain.Float(0), Max: domain.Float(1)},
	})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"curve":"any","gain":"number"}`, string(data))

	var back Schema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "any", back["curve"].Name())
	// Bounds are not part of the wire form.
	assert.NoError(t, back["gain"].Validate(5.0))
}

func TestSchema_JSONRoundTrip(t *testing.T) {
	s := Schema{"cutoff": Number(), "mode": Enum("lp", "hp")}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cutoff":"number","mode":"enum(lp|hp)"}`, string(data))

	var back Schema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "enum(lp|hp)", back["mode"].Name())

	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &back))
}
