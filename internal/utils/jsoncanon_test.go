package utils

import "testing"

func TestJSONEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"key order", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"nested key order", `{"x":{"a":1,"b":[1,2]}}`, `{"x":{"b":[1,2],"a":1}}`, true},
		{"different value", `{"a":1}`, `{"a":2}`, false},
		{"array order matters", `[1,2]`, `[2,1]`, false},
		{"non-json byte compare", `not json`, `not json`, true},
		{"non-json differs", `not json`, `also not json`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := JSONEqual([]byte(tc.a), []byte(tc.b)); got != tc.want {
				t.Fatalf("JSONEqual(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
