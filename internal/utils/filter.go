package utils

import "strings"

// NormalizeIDs flattens task id flag values such as ["bun, deno", "brew"]
// into a de-duplicated list, keeping first-seen order. Empty entries are dropped.
func NormalizeIDs(values []string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			id := strings.TrimSpace(part)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// ContainsID reports whether ids contains id
func ContainsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
