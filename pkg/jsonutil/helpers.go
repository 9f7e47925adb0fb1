// Package jsonutil provides JSON rendering and snapshot diffing
// utilities for tweenflow.
//
// Widget snapshots are plain maps. The CLI prints them and diffs two
// snapshots of the same scene taken at different timeline positions.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MustMarshal marshals a value to JSON, panicking on error.
// Use only for values known to be marshalable (e.g., maps, slices).
func MustMarshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("jsonutil.MustMarshal: %v", err))
	}
	return string(b)
}

// MustMarshalIndent is MustMarshal with two-space indentation.
func MustMarshalIndent(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("jsonutil.MustMarshalIndent: %v", err))
	}
	return string(b)
}

// JSONDiff is one difference between two documents.
type JSONDiff struct {
	Path     string `json:"path"`
	Type     string `json:"type"` // "add", "update", "delete"
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// ComputeJSONDiff compares two JSON objects and returns the differences.
func ComputeJSONDiff(oldJSON, newJSON string) ([]JSONDiff, error) {
	var oldMap, newMap map[string]interface{}

	if oldJSON != "" {
		if err := json.Unmarshal([]byte(oldJSON), &oldMap); err != nil {
			return nil, fmt.Errorf("parsing old JSON: %w", err)
		}
	}
	if newJSON != "" {
		if err := json.Unmarshal([]byte(newJSON), &newMap); err != nil {
			return nil, fmt.Errorf("parsing new JSON: %w", err)
		}
	}
	return DiffMaps(oldMap, newMap), nil
}

// DiffMaps compares two decoded objects. Values are compared by their
// JSON encoding, so an int32 and a float64 of equal value match. Nested
// maps are diffed recursively with dotted paths.
func DiffMaps(oldMap, newMap map[string]interface{}) []JSONDiff {
	return diffMaps("", normalize(oldMap), normalize(newMap), nil)
}

// normalize round-trips v through JSON so nested typed maps become
// map[string]interface{}.
func normalize(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if m == nil {
		return out
	}
	b, err := json.Marshal(m)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return m
	}
	return out
}

func diffMaps(prefix string, oldMap, newMap map[string]interface{}, diffs []JSONDiff) []JSONDiff {
	allKeys := make(map[string]bool)
	for k := range oldMap {
		allKeys[k] = true
	}
	for k := range newMap {
		allKeys[k] = true
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		oldVal, oldExists := oldMap[k]
		newVal, newExists := newMap[k]

		switch {
		case !oldExists && newExists:
			diffs = append(diffs, JSONDiff{
				Path:     path,
				Type:     "add",
				NewValue: toJSONStr(newVal),
			})
		case oldExists && !newExists:
			diffs = append(diffs, JSONDiff{
				Path:     path,
				Type:     "delete",
				OldValue: toJSONStr(oldVal),
			})
		case oldExists && newExists:
			oldStr := toJSONStr(oldVal)
			newStr := toJSONStr(newVal)
			if oldStr != newStr {
				oldChild, oldIsMap := oldVal.(map[string]interface{})
				newChild, newIsMap := newVal.(map[string]interface{})
				if oldIsMap && newIsMap {
					diffs = diffMaps(path, oldChild, newChild, diffs)
				} else {
					diffs = append(diffs, JSONDiff{
						Path:     path,
						Type:     "update",
						OldValue: oldStr,
						NewValue: newStr,
					})
				}
			}
		}
	}

	return diffs
}

func toJSONStr(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// TruncateString truncates a string to maxLen characters, adding "..."
// if truncation occurred. Used for display in the player.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
