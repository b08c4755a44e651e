// Package chain walks parent-linked index chains.
package chain

// None marks the end of a chain.
const None = -1

// Walk follows parent links from current until None and returns the indices
// from the root of the chain to current. A chain longer than limit is cut
// off at limit entries, which guards against a corrupted parent table.
func Walk(current int, parent func(int) int, limit int) []int {
	path := make([]int, 0, 8)
	for current != None && len(path) < limit {
		path = append(path, current)
		current = parent(current)
	}
	Reverse(path)
	return path
}

// Reverse reverses s in place.
func Reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
