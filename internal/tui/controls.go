package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/jask/paramdeck/internal/sdk"
)

// step moves v one notch in dir (-1 or 1). ok is false for types that have
// no notion of a neighbouring value.
func step(def sdk.ParameterDefinition, v string, dir int) (next string, ok bool) {
	switch def.Type {
	case sdk.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", false
		}
		f = clamp(def, f+float64(dir))
		return strconv.FormatFloat(f, 'f', def.DecimalPlaces, 64), true
	case sdk.TypeInt, sdk.TypeOdd, sdk.TypeEven:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return "", false
		}
		inc := int64(1)
		if def.Type != sdk.TypeInt {
			inc = 2
		}
		n += inc * int64(dir)
		if c := int64(clamp(def, float64(n))); c != n {
			// stepping past a bound keeps the value
			return v, true
		}
		return strconv.FormatInt(n, 10), true
	case sdk.TypeBool:
		return strconv.FormatBool(v != "true"), true
	case sdk.TypeStringList:
		if len(def.Choices) == 0 {
			return "", false
		}
		idx, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			idx = 0
		}
		n := len(def.Choices)
		return strconv.Itoa(((idx+dir)%n + n) % n), true
	}
	return "", false
}

func clamp(def sdk.ParameterDefinition, f float64) float64 {
	if def.Min != nil {
		f = math.Max(f, *def.Min)
	}
	if def.Max != nil {
		f = math.Min(f, *def.Max)
	}
	return f
}

// editable reports whether the value is typed rather than stepped.
func editable(def sdk.ParameterDefinition) bool {
	switch def.Type {
	case sdk.TypeBool, sdk.TypeStringList:
		return false
	}
	return true
}

func renderValue(def sdk.ParameterDefinition, v string) string {
	switch def.Type {
	case sdk.TypeBool:
		if v == "true" {
			return "[x]"
		}
		return "[ ]"
	case sdk.TypeStringList:
		return "‹ " + sdk.FormatValue(def, v) + " ›"
	case sdk.TypeString:
		return strconv.Quote(v)
	}
	return sdk.FormatValue(def, v)
}
