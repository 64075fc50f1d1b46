package middleware

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/aretw0/quoteflow/pkg/ports"
)

// Mask replaces masked values in persisted blobs.
const Mask = "***"

// DefaultPIIPatterns cover the contact section of the answer tree.
// Patterns match dotted key paths such as "contact.email".
var DefaultPIIPatterns = []string{`^contact\.(name|email|phone)$`}

type piiMiddleware struct {
	next     ports.BlobStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the patterns
// before they reach the underlying store. Null values are left alone.
// Blobs that are not JSON objects are stored untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.BlobStore) ports.BlobStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Put(ctx context.Context, key string, data []byte) error {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return m.next.Put(ctx, key, data)
	}

	maskMap(tree, "", m.patterns)

	masked, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return m.next.Put(ctx, key, masked)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, prefix string, patterns []*regexp.Regexp) {
	for k, v := range m {
		path := prefix + k
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, path+".", patterns)
			continue
		}
		if v == nil {
			continue
		}
		for _, p := range patterns {
			if p.MatchString(path) {
				m[k] = Mask
				break
			}
		}
	}
}
