package answers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		target map[string]any
		source map[string]any
		want   map[string]any
	}{
		{
			name:   "non-null source wins",
			target: map[string]any{"a": 1},
			source: map[string]any{"a": 2},
			want:   map[string]any{"a": 2},
		},
		{
			name:   "null source ignored when key present",
			target: map[string]any{"a": 1},
			source: map[string]any{"a": nil},
			want:   map[string]any{"a": 1},
		},
		{
			name:   "null source kept when key absent",
			target: map[string]any{},
			source: map[string]any{"a": nil},
			want:   map[string]any{"a": nil},
		},
		{
			name:   "objects recurse",
			target: map[string]any{"s": map[string]any{"x": 1, "y": nil}},
			source: map[string]any{"s": map[string]any{"y": 2}},
			want:   map[string]any{"s": map[string]any{"x": 1, "y": 2}},
		},
		{
			name:   "scalar replaces object",
			target: map[string]any{"s": map[string]any{"x": 1}},
			source: map[string]any{"s": "flat"},
			want:   map[string]any{"s": "flat"},
		},
		{
			name:   "false and zero are values",
			target: map[string]any{"b": true, "n": 5},
			source: map[string]any{"b": false, "n": 0},
			want:   map[string]any{"b": false, "n": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.target, tt.source))
		})
	}
}

func TestRemoveEmpty(t *testing.T) {
	in := map[string]any{
		"a": nil,
		"b": "",
		"c": map[string]any{"d": nil},
		"e": map[string]any{"f": 0, "g": false},
		"h": []any{"x"},
	}
	assert.Equal(t, map[string]any{
		"e": map[string]any{"f": 0, "g": false},
		"h": []any{"x"},
	}, RemoveEmpty(in))
}

func TestNormalize(t *testing.T) {
	v, err := normalize(map[string]any{"n": 3.0, "f": 2.5, "i": int64(7)})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 3, "f": 2.5, "i": 7}, v)
}
