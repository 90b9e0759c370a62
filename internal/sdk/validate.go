package sdk

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidValue is wrapped by every validation failure.
var ErrInvalidValue = errors.New("invalid parameter value")

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?|0[xX][0-9a-fA-F]{8})$`)

// Validate checks v against the definition's domain.
func Validate(def ParameterDefinition, v string) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidValue, def.Label(), fmt.Sprintf(format, args...))
	}
	switch def.Type {
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return invalid("%q is not a number", v)
		}
		if err := checkRange(def, f); err != nil {
			return invalid("%v", err)
		}
	case TypeInt, TypeOdd, TypeEven:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return invalid("%q is not an integer", v)
		}
		if err := checkRange(def, float64(n)); err != nil {
			return invalid("%v", err)
		}
		if def.Type == TypeOdd && n%2 == 0 {
			return invalid("%d is not odd", n)
		}
		if def.Type == TypeEven && n%2 != 0 {
			return invalid("%d is not even", n)
		}
	case TypeBool:
		if v != "true" && v != "false" {
			return invalid("%q is not true or false", v)
		}
	case TypeString:
		if def.Max != nil && float64(utf8.RuneCountInString(v)) > *def.Max {
			return invalid("longer than %v characters", *def.Max)
		}
	case TypeStringList:
		idx, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || idx < 0 || idx >= len(def.Choices) {
			return invalid("%q is not a choice index", v)
		}
	case TypeColor:
		if !colorPattern.MatchString(strings.TrimSpace(v)) {
			return invalid("%q is not a color", v)
		}
	case TypeFile:
		if strings.TrimSpace(v) == "" {
			return invalid("file id required")
		}
	default:
		return invalid("unsupported type %q", def.Type)
	}
	return nil
}

func checkRange(def ParameterDefinition, f float64) error {
	if def.Min != nil && f < *def.Min {
		return fmt.Errorf("%v below minimum %v", f, *def.Min)
	}
	if def.Max != nil && f > *def.Max {
		return fmt.Errorf("%v above maximum %v", f, *def.Max)
	}
	return nil
}

// FormatValue renders v for display. Values that fail validation are
// returned unchanged.
func FormatValue(def ParameterDefinition, v string) string {
	if Validate(def, v) != nil {
		return v
	}
	switch def.Type {
	case TypeFloat:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return strconv.FormatFloat(f, 'f', def.DecimalPlaces, 64)
	case TypeStringList:
		idx, _ := strconv.Atoi(strings.TrimSpace(v))
		return def.Choices[idx]
	case TypeColor:
		c := strings.ToLower(strings.TrimSpace(v))
		if strings.HasPrefix(c, "0x") {
			c = "#" + c[2:]
		}
		return c
	}
	return v
}
