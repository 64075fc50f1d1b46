package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty answer path")
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("invalid answer path %q", path)
		}
	}
	return segs, nil
}

func lookup(tree map[string]any, segs []string) (any, bool) {
	var cur any = tree
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// assign writes value at segs, replacing any non-container on the way.
func assign(tree map[string]any, segs []string, value any) {
	cur := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

// normalize converts v to the shape it would have after a JSON round-trip,
// except that integral numbers become int.
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, int:
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("answer value is not serialisable: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return fixNumbers(out), nil
}

func fixNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = fixNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fixNumbers(e)
		}
		return t
	}
	return v
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}
