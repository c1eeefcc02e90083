package engine

import "strings"

// Duplicate is a name that occurs more than once, with every position it
// occupies.
type Duplicate struct {
	Name    string
	Indices []int
}

// SplitKey splits a namespaced metadata key into its segments, outer first.
func SplitKey(key, delim string) []string { return strings.Split(key, delim) }

// JoinKey is the inverse of SplitKey.
func JoinKey(segments []string, delim string) string { return strings.Join(segments, delim) }

// Unaccounted returns the names for which known reports false, in input order.
func Unaccounted(names []string, known func(string) bool) []string {
	var out []string
	for _, n := range names {
		if !known(n) {
			out = append(out, n)
		}
	}
	return out
}
