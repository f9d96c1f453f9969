package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IsBlank reports whether a raw column value carries no information:
// nil, an empty string, or a string of only whitespace.
func IsBlank(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	default:
		return false
	}
}

// ToString converts various types to a trimmed string.
// Nil values convert to the empty string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// ErrBlank is returned by the typed conversions for a value that carries no information.
var ErrBlank = errors.New("blank value")

// ToInt64 converts various types to int64 using explicit type switching.
// Fractional values and values outside the int64 range are errors, never truncated.
func ToInt64(val any) (int64, error) {
	switch v := val.(type) {
	case nil:
		return 0, ErrBlank
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint:
		return uintToInt64(uint64(v))
	case uint64:
		return uintToInt64(v)
	case uint32:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case *int64:
		if v == nil {
			return 0, ErrBlank
		}
		return *v, nil
	default:
		s := ToString(v)
		if s == "" {
			return 0, ErrBlank
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return i, nil
		}
		// Numeric columns sometimes arrive as decimals ("100.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid integer %q", s)
		}
		return floatToInt64(f)
	}
}

func uintToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("integer %d out of range", v)
	}
	return int64(v), nil
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid integer %v", f)
	}
	// 2^63 is exactly representable; anything at or above it overflows.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int64(f), nil
}

// ToFloat64 converts various types to float64. NaN and infinities are errors.
func ToFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case nil:
		return 0, ErrBlank
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case *float64:
		if v == nil {
			return 0, ErrBlank
		}
		return finite(*v)
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, err := ToInt64(v)
		if err != nil {
			return 0, err
		}
		return float64(i), nil
	default:
		s := ToString(v)
		if s == "" {
			return 0, ErrBlank
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", s)
		}
		return finite(f)
	}
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %v", f)
	}
	return f, nil
}

// ToBool converts various types to bool.
// It handles bool, integers (non-zero=true), and the strings 1/0, true/false, t/f,
// yes/no, y/n and on/off. Any other string is an error.
func ToBool(val any) (bool, error) {
	switch v := val.(type) {
	case nil:
		return false, ErrBlank
	case bool:
		return v, nil
	case *bool:
		if v == nil {
			return false, ErrBlank
		}
		return *v, nil
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, err := ToInt64(v)
		if err != nil {
			// Only out-of-range unsigned values fail, and those are non-zero.
			return true, nil
		}
		return i != 0, nil
	default:
		s := strings.ToLower(ToString(v))
		switch s {
		case "":
			return false, ErrBlank
		case "1", "true", "t", "yes", "y", "on":
			return true, nil
		case "0", "false", "f", "no", "n", "off":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean %q", s)
		}
	}
}
