package shared

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL normalizes a playlist URL by stripping the query string and
// fragment. The result is the identity used for caching and idempotency:
// two URLs differing only in tracking parameters canonicalize to the same
// string.
func CanonicalURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""

	return strings.TrimSuffix(parsed.String(), "/"), nil
}

// Chunk splits items into sub-slices of at most size elements, preserving
// order. A non-positive size returns the whole input as a single chunk.
// Service batch limits (e.g. 100 tracks per playlist-items call) are
// enforced by chunking before submission.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}

	return chunks
}
