package config

import (
	"strconv"
	"strings"
)

// Options is a free-form bag of reader settings with typed accessors. Values
// may come from a YAML/JSON file (typed) or from the environment (strings),
// so the accessors accept both.
type Options map[string]any

// String returns the value under key, or def when it is absent or not a
// string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the value under key. "true"/"false" strings are accepted.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Int returns the value under key. Numbers decoded as float64 are truncated.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Rune returns the first rune of the string under key, or def. "\t" and
// "tab" both mean a tab, for tab-separated sheets.
func (o Options) Rune(key string, def rune) rune {
	s, ok := o[key].(string)
	if !ok || s == "" {
		return def
	}
	if s == `\t` || strings.EqualFold(s, "tab") {
		return '\t'
	}
	return []rune(s)[0]
}
