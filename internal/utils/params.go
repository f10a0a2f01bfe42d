package utils

import (
	"strconv"
	"strings"
)

// ParseIDs converts submitted id strings, skipping anything that is not a
// positive integer. Duplicates are kept once, in first-seen order.
func ParseIDs(raw []string) []uint {
	ids := make([]uint, 0, len(raw))
	seen := make(map[uint]struct{}, len(raw))
	for _, s := range raw {
		id, ok := ParseID(s)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// ParsePage reads a 1-based page number and page size. Missing or invalid
// values fall back to page 1 and size 0 (everything).
func ParsePage(page, size string) (int, int) {
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = 1
	}
	s, err := strconv.Atoi(size)
	if err != nil || s < 0 {
		s = 0
	}
	return p, s
}
