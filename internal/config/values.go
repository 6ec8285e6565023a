package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The decoders below accept every representation YAML and TOML produce for
// a value, plus strings, since hand-edited files often quote numbers and
// booleans.

func toInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("%w: %s: %d overflows int", ErrInvalidValue, key, n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s: %v is not a whole number", ErrInvalidValue, key, n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidValue, key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s: expected integer, got %T", ErrInvalidValue, key, v)
	}
}

func toBool(key string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidValue, key, b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: %s: expected boolean, got %T", ErrInvalidValue, key, v)
	}
}

func toString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s: expected string, got %T", ErrInvalidValue, key, v)
	}
}

// toStrings accepts a list of scalars or a single string. A null value is
// an empty list.
func toStrings(key string, v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		return []string{list}, nil
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case int, int64, uint64, float64, bool:
				out = append(out, fmt.Sprint(s))
			default:
				return nil, fmt.Errorf("%w: %s[%d]: expected string, got %T", ErrInvalidValue, key, i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s: expected list, got %T", ErrInvalidValue, key, v)
	}
}
