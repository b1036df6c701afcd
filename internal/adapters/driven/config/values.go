// Package config holds the value conversions shared by the config stores.
// TOML decodes integers as int64 and arrays as []any, environment
// overrides arrive as strings, and in-memory stores hold whatever Set was
// given; the typed getters accept all three.
package config

import (
	"strconv"
	"strings"
)

// Lookup returns the raw value stored under key.
type Lookup func(key string) (any, bool)

// String returns the value if it is a string, else "".
func (l Lookup) String(key string) string {
	val, _ := l(key)
	str, _ := val.(string)
	return str
}

// Int converts integers, whole floats and numeric strings. Anything
// else is 0.
func (l Lookup) Int(key string) int {
	val, ok := l(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

// Float converts floats, integers and numeric strings.
func (l Lookup) Float(key string) float64 {
	val, ok := l(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

// Bool accepts booleans and strconv.ParseBool strings.
func (l Lookup) Bool(key string) bool {
	val, ok := l(key)
	if !ok {
		return false
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// StringSlice keeps the string items of a list. A string is split on
// commas, which is how environment overrides spell lists.
func (l Lookup) StringSlice(key string) []string {
	val, ok := l(key)
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
