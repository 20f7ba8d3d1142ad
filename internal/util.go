package internal

// ReconstructPath walks parent links from current back to the root
// (the first index whose parent is negative) and returns the indices root first.
func ReconstructPath(parentOf func(int) int, current int) []int {
	path := []int{current}
	for {
		previous := parentOf(current)
		if previous < 0 {
			break
		}
		path = append(path, previous)
		current = previous
	}
	Reverse(path)
	return path
}

// Reverse reverses a slice in place.
func Reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
