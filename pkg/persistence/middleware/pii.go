package middleware

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/aretw0/stepwise/pkg/ports"
)

const mask = "***"

type piiMiddleware struct {
	next     ports.KVStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks every match of the patterns
// inside the inputText of each stored group. Values that are not a JSON
// envelope pass through untouched. Masking is one-way: loads see the mask.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.KVStore) ports.KVStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Set(ctx context.Context, key string, value []byte) error {
	return m.next.Set(ctx, key, m.maskValue(value))
}

func (m *piiMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) Keys(ctx context.Context) ([]string, error) {
	return m.next.Keys(ctx)
}

// maskValue returns a masked copy; the caller's slice is never modified.
func (m *piiMiddleware) maskValue(value []byte) []byte {
	if len(m.patterns) == 0 {
		return value
	}

	var envelope map[string]any
	if err := json.Unmarshal(value, &envelope); err != nil {
		return value
	}
	groups, ok := envelope["stepGroups"].([]any)
	if !ok {
		return value
	}

	changed := false
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		text, ok := group["inputText"].(string)
		if !ok {
			continue
		}
		if masked := maskText(text, m.patterns); masked != text {
			group["inputText"] = masked
			changed = true
		}
	}
	if !changed {
		return value
	}

	out, err := json.Marshal(envelope)
	if err != nil {
		return value
	}
	return out
}

func maskText(s string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		s = p.ReplaceAllString(s, mask)
	}
	return s
}
