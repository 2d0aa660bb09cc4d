package buffer

import (
	"fmt"

	"github.com/jellexet/valuebuf/pkg/match"
)

// IndexOf returns the index of the first occurrence of word, or -1.
// An empty word always matches at 0.
func (b *Builder) IndexOf(word string) int {
	i, _ := b.IndexOfFrom(word, 0)
	return i
}

// IndexOfFrom searches content[start:] for the first occurrence of word.
//
// The result is relative to start, not to the beginning of the content:
// for "abcabc", IndexOfFrom("abc", 1) returns 2. An empty word always
// matches at 0, and -1 means word does not occur.
func (b *Builder) IndexOfFrom(word string, start int) (int, error) {
	if word == "" {
		return 0, nil
	}
	hay, err := b.searchRange(start)
	if err != nil {
		return -1, err
	}
	return match.FindFirst(hay, word), nil
}

// LastIndexOf returns the index of the last occurrence of word, or -1.
// An empty word always matches at 0.
func (b *Builder) LastIndexOf(word string) int {
	i, _ := b.LastIndexOfFrom(word, 0)
	return i
}

// LastIndexOfFrom searches content[start:] for the last occurrence of word.
// Like IndexOfFrom, the result is relative to start.
func (b *Builder) LastIndexOfFrom(word string, start int) (int, error) {
	if word == "" {
		return 0, nil
	}
	hay, err := b.searchRange(start)
	if err != nil {
		return -1, err
	}
	return match.FindLast(hay, word), nil
}

// Contains reports whether word occurs in the content.
func (b *Builder) Contains(word string) bool {
	return b.IndexOf(word) != -1
}

func (b *Builder) searchRange(start int) ([]byte, error) {
	if start < 0 {
		return nil, fmt.Errorf("%w: negative start index %d", ErrInvalidArgument, start)
	}
	if start > b.length {
		return nil, insertIndexError(start, b.length)
	}
	return b.buf[start:b.length], nil
}
