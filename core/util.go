package core

import "strings"

// NamedRef is an embedded display reference to a related record.
type NamedRef struct {
	Name string `json:"name"`
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
