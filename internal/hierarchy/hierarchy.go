// Package hierarchy computes containment chains for resource paths.
// It is pure path arithmetic: no I/O, no storage access.
package hierarchy

import "strings"

// Normalize ensures a container path carries its trailing separator.
func Normalize(container string) string {
	if !strings.HasSuffix(container, "/") {
		return container + "/"
	}
	return container
}

// Ancestors returns the candidate governing paths for target, ordered from
// most specific (the target itself) to least specific (the space root,
// inclusive). Intermediate entries are the enclosing containers, each with a
// trailing slash, at segment boundaries only: /s/1/public is never an
// ancestor of /s/1/publicity.
//
// Returns nil when target does not live under root.
func Ancestors(root, target string) []string {
	root = Normalize(root)
	if target == root || target+"/" == root {
		return []string{root}
	}
	if !strings.HasPrefix(target, root) {
		return nil
	}

	out := []string{target}
	rest := strings.TrimSuffix(target[len(root):], "/")
	segs := strings.Split(rest, "/")
	for i := len(segs) - 1; i >= 1; i-- {
		out = append(out, root+strings.Join(segs[:i], "/")+"/")
	}
	return append(out, root)
}
