package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

// CanonicalizeJSON returns a stable encoding of arbitrary JSON: object keys
// sorted recursively, array order preserved, scalars unchanged. Non-JSON
// input is returned as-is so byte comparison still works for opaque bodies.
func CanonicalizeJSON(b []byte) []byte {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return b
	}
	c := canonicalize(v)
	out, err := json.Marshal(c)
	if err != nil {
		return b
	}
	return out
}

// JSONEqual reports whether two bodies are equal after canonicalization.
// Used to detect idempotent re-writes: an unchanged write must not disturb
// resolution state or trigger cache invalidation.
func JSONEqual(a, b []byte) bool {
	return bytes.Equal(CanonicalizeJSON(a), CanonicalizeJSON(b))
}

func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(map[string]any, len(t))
		for _, k := range keys {
			m[k] = canonicalize(t[k])
		}
		return m
	case []any:
		for i := range t {
			t[i] = canonicalize(t[i])
		}
		return t
	default:
		return v
	}
}
