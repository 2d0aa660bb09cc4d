// Package match implements naive ordinal substring search.
//
// The matchers compare bytes one by one and run in O(len(haystack)*len(needle))
// in the worst case. They are meant for small, bounded haystacks such as the
// content of a single text buffer.
package match

// Text is any byte sequence that can be indexed.
type Text interface {
	~string | ~[]byte
}

// FindFirst returns the smallest index i such that haystack[i:i+len(needle)]
// equals needle, or -1 if needle does not occur.
// An empty needle matches at 0.
func FindFirst[H, N Text](haystack H, needle N) int {
	n := len(needle)
	last := len(haystack) - n
	for i := 0; i <= last; i++ {
		if matchAt(haystack, needle, i) {
			return i
		}
	}
	return -1
}

// FindLast returns the largest index i such that haystack[i:i+len(needle)]
// equals needle, or -1 if needle does not occur.
// An empty needle matches at len(haystack).
func FindLast[H, N Text](haystack H, needle N) int {
	for i := len(haystack) - len(needle); i >= 0; i-- {
		if matchAt(haystack, needle, i) {
			return i
		}
	}
	return -1
}

// matchAt reports whether needle occurs in haystack at offset i.
// The caller guarantees i+len(needle) <= len(haystack).
func matchAt[H, N Text](haystack H, needle N, i int) bool {
	for j := 0; j < len(needle); j++ {
		if haystack[i+j] != needle[j] {
			return false
		}
	}
	return true
}
