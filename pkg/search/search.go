// Package search filters the entity collections by a free-text query.
//
// Matching is a case-insensitive substring test. An empty query returns the
// input unchanged; otherwise the relative order of matches is preserved.
package search

import (
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Groups filters groups by title.
func Groups(groups []domain.StepGroup, query string) []domain.StepGroup {
	return filter(groups, query, func(g domain.StepGroup, q string) bool {
		return contains(g.Title, q)
	})
}

// Steps filters steps by title or code.
func Steps(steps []domain.Step, query string) []domain.Step {
	return filter(steps, query, func(s domain.Step, q string) bool {
		return contains(s.Title, q) || contains(s.Code, q)
	})
}

// LibrarySteps filters library templates by title or code.
func LibrarySteps(items []domain.LibraryStep, query string) []domain.LibraryStep {
	return filter(items, query, func(l domain.LibraryStep, q string) bool {
		return contains(l.Title, q) || contains(l.Code, q)
	})
}

func filter[T any](items []T, query string, match func(T, string) bool) []T {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
