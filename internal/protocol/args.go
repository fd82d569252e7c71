package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

// Args are positional command arguments as decoded from JSON: strings,
// booleans, numbers or null.
type Args []any

func (a Args) at(i int) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	return a[i], nil
}

func (a Args) String(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected string, got %T", i, v)
	}
	return s, nil
}

// OptionalString returns "" for a missing or null argument.
func (a Args) OptionalString(i int) (string, error) {
	if i >= len(a) || a[i] == nil {
		return "", nil
	}
	return a.String(i)
}

func (a Args) Bool(i int) (bool, error) {
	v, err := a.at(i)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %d: expected bool, got %T", i, v)
	}
	return b, nil
}

func (a Args) Int(i int) (int, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %d: expected integer, got %v", i, n)
		}
		if n < math.MinInt || n >= -math.MinInt {
			return 0, fmt.Errorf("argument %d: %v out of range", i, n)
		}
		return int(n), nil
	case json.Number:
		i64, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %d: %w", i, err)
		}
		if i64 < math.MinInt || i64 > math.MaxInt {
			return 0, fmt.Errorf("argument %d: %d out of range", i, i64)
		}
		return int(i64), nil
	default:
		return 0, fmt.Errorf("argument %d: expected integer, got %T", i, v)
	}
}

// Strings returns every argument as a string.
func (a Args) Strings() ([]string, error) {
	out := make([]string, 0, len(a))
	for i := range a {
		s, err := a.String(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
