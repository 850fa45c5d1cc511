package core

import "strings"

// Normalize turns raw query text into a Query by trimming surrounding
// whitespace and lower-casing. Raw strings that normalize identically are the
// same Query everywhere downstream.
func Normalize(raw string) Query {
	return Query(strings.ToLower(strings.TrimSpace(raw)))
}
