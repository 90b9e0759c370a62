package sdk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		def  ParameterDefinition
		ok   []string
		bad  []string
	}{
		{
			name: "float",
			def:  ParameterDefinition{Name: "w", Type: TypeFloat, Min: ptr(1.0), Max: ptr(10.0)},
			ok:   []string{"1", "2.5", " 10 "},
			bad:  []string{"0.99", "10.01", "abc", "NaN", ""},
		},
		{
			name: "odd",
			def:  ParameterDefinition{Name: "n", Type: TypeOdd, Min: ptr(1.0), Max: ptr(9.0)},
			ok:   []string{"1", "3", "9"},
			bad:  []string{"2", "11", "3.0"},
		},
		{
			name: "even",
			def:  ParameterDefinition{Name: "n", Type: TypeEven},
			ok:   []string{"0", "-4"},
			bad:  []string{"1"},
		},
		{
			name: "bool",
			def:  ParameterDefinition{Name: "b", Type: TypeBool},
			ok:   []string{"true", "false"},
			bad:  []string{"TRUE", "1"},
		},
		{
			name: "string",
			def:  ParameterDefinition{Name: "s", Type: TypeString, Max: ptr(3.0)},
			ok:   []string{"", "abc", "äöü"},
			bad:  []string{"abcd"},
		},
		{
			name: "string list",
			def:  ParameterDefinition{Name: "c", Type: TypeStringList, Choices: []string{"a", "b"}},
			ok:   []string{"0", "1"},
			bad:  []string{"2", "-1", "a"},
		},
		{
			name: "color",
			def:  ParameterDefinition{Name: "c", Type: TypeColor},
			ok:   []string{"#ff0000", "#FF0000AA", "0xff0000ff"},
			bad:  []string{"red", "#fff", "0xff0000"},
		},
		{
			name: "file",
			def:  ParameterDefinition{Name: "f", Type: TypeFile},
			ok:   []string{"file-id"},
			bad:  []string{" "},
		},
	}
	for _, tc := range cases {
		for _, v := range tc.ok {
			require.NoError(t, Validate(tc.def, v), "%s: %q", tc.name, v)
		}
		for _, v := range tc.bad {
			err := Validate(tc.def, v)
			require.ErrorIs(t, err, ErrInvalidValue, "%s: %q", tc.name, v)
		}
	}
}

func TestValidateUnknownType(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, Validate(ParameterDefinition{Name: "x", Type: "Mesh"}, "1"), ErrInvalidValue)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2.50", FormatValue(ParameterDefinition{Type: TypeFloat, DecimalPlaces: 2}, "2.5"))
	require.Equal(t, "b", FormatValue(ParameterDefinition{Type: TypeStringList, Choices: []string{"a", "b"}}, "1"))
	require.Equal(t, "#aabbccdd", FormatValue(ParameterDefinition{Type: TypeColor}, "0xAABBCCDD"))
	require.Equal(t, "oops", FormatValue(ParameterDefinition{Type: TypeFloat}, "oops"))
}

func TestValueParamIsValid(t *testing.T) {
	t.Parallel()

	p := newValueParam(ParameterDefinition{Name: "w", Type: TypeInt, Max: ptr(5.0), DefaultValue: "1"})
	ok, err := p.IsValid("9", false)
	require.False(t, ok)
	require.NoError(t, err)

	ok, err = p.IsValid("9", true)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrInvalidValue)

	p.SetValue("4")
	p.ResetToDefaultValue()
	require.Equal(t, "1", p.Value())
}
