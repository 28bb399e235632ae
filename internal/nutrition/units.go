package nutrition

import (
	"fmt"
	"math"
	"strings"
)

const kgPerPound = 0.45359237

// Finite reports whether v is neither NaN nor an infinity. Non-finite values
// cannot be encoded as JSON.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ToKg(value float64, unit string) (float64, error) {
	if !Finite(value) || value <= 0 {
		return 0, fmt.Errorf("weight must be > 0")
	}
	switch normalizeWeightUnit(unit) {
	case "kg":
		return value, nil
	case "lb":
		return value * kgPerPound, nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}

func FromKg(kg float64, unit string) (float64, error) {
	switch normalizeWeightUnit(unit) {
	case "kg":
		return kg, nil
	case "lb":
		return kg / kgPerPound, nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}

func normalizeWeightUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "", "kg", "kgs":
		return "kg"
	case "lb", "lbs":
		return "lb"
	}
	return u
}
