// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

/*
Package view computes derived views: filtered, sorted and windowed
projections of a store's items.

All functions are pure. They copy their input and never mutate it; the
rendering layer recomputes them from a store observer whenever the items or
the local filter/sort state change.
*/
package view

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator compares strings the way the backend's locale sorts them.
var collator = collate.New(language.Chinese)

// Filter returns the items whose fields contain the term, case
// insensitively. An empty term is the identity.
func Filter[T any](items []T, term string, fields func(item T) []string) []T {
	out := make([]T, 0, len(items))
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append(out, items...)
	}
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// SortState is the client-local sort selection of one list.
type SortState struct {
	Field      string
	Descending bool
}

// Toggle flips the direction when the same field is selected again and
// resets to ascending when a new field is selected.
func (s *SortState) Toggle(field string) {
	if s.Field == field {
		s.Descending = !s.Descending
		return
	}
	s.Field = field
	s.Descending = false
}

// Sort returns a stably sorted copy. When both compared values parse as
// numbers they compare numerically, otherwise as locale-aware strings.
func Sort[T any](items []T, key func(item T) string, descending bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(key(out[i]), key(out[j]))
		if descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(a, b string) int {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return collator.CompareString(a, b)
}

// Window slices one local page out of items. It is used for the small
// reference lists embedded in forms; primary lists are paginated by the
// server.
func Window[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
