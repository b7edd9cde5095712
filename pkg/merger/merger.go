// Package merger unions fully-resolved snippets into one document tree.
// Exactly one snippet must be the root (a mapping carrying both 'openapi'
// and 'info'); every other snippet deep-merges into it in emission order.
package merger

import (
	"reflect"

	"github.com/goccy/go-yaml"

	"github.com/oasforge/oasforge/pkg/errors"
	"github.com/oasforge/oasforge/pkg/pipeline"
)

// contextLines is how much of a failing snippet is echoed in parse errors.
const contextLines = 5

// Merge parses every snippet into a tree value and merges all non-root
// documents into the single root. A structural parse failure aborts the
// whole merge with the snippet's file, line, and a short excerpt.
func Merge(snippets []pipeline.Snippet) (any, error) {
	var root any
	rootFound := false
	others := make([]any, 0, len(snippets))

	for _, snippet := range snippets {
		var value any
		if err := yaml.UnmarshalWithOptions([]byte(snippet.Content), &value, yaml.UseOrderedMap()); err != nil {
			return nil, errors.NewSourceMapError(snippet.File, snippet.Line, snippet.Content, contextLines, err)
		}

		// Empty and comment-only content parses to nil without error; letting
		// it through would overwrite the root at the scalar-merge stage.
		if value == nil {
			return nil, errors.NewSourceMapError(snippet.File, snippet.Line, snippet.Content, contextLines, errors.ErrEmptyDocument)
		}

		if isRoot(value) {
			if rootFound {
				return nil, errors.ErrMultipleRootsFound
			}
			root = value
			rootFound = true
		} else {
			others = append(others, value)
		}
	}

	if !rootFound {
		return nil, errors.ErrNoRootFound
	}

	for _, other := range others {
		root = deepMerge(root, other)
	}

	return root, nil
}

// isRoot reports whether a parsed document is the root: a mapping that
// contains both an 'openapi' key and an 'info' key.
func isRoot(value any) bool {
	mapping, ok := value.(yaml.MapSlice)
	if !ok {
		return false
	}
	hasOpenAPI, hasInfo := false, false
	for _, item := range mapping {
		switch item.Key {
		case "openapi":
			hasOpenAPI = true
		case "info":
			hasInfo = true
		}
	}
	return hasOpenAPI && hasInfo
}

// deepMerge recursively unions source into target:
//   - mapping x mapping: recurse per key, new keys appended;
//   - sequence x sequence: concatenate, then deduplicate by structural
//     equality keeping first occurrence;
//   - any other pairing: source overwrites target.
func deepMerge(target, source any) any {
	switch t := target.(type) {
	case yaml.MapSlice:
		s, ok := source.(yaml.MapSlice)
		if !ok {
			return source
		}
		return mergeMappings(t, s)
	case []any:
		s, ok := source.([]any)
		if !ok {
			return source
		}
		return dedupeSequence(append(append([]any{}, t...), s...))
	default:
		return source
	}
}

func mergeMappings(target, source yaml.MapSlice) yaml.MapSlice {
	for _, item := range source {
		idx := indexOfKey(target, item.Key)
		if idx < 0 {
			target = append(target, item)
			continue
		}
		target[idx].Value = deepMerge(target[idx].Value, item.Value)
	}
	return target
}

func indexOfKey(mapping yaml.MapSlice, key any) int {
	for i, item := range mapping {
		if reflect.DeepEqual(item.Key, key) {
			return i
		}
	}
	return -1
}

func dedupeSequence(seq []any) []any {
	out := make([]any, 0, len(seq))
	for _, candidate := range seq {
		seen := false
		for _, kept := range out {
			if reflect.DeepEqual(kept, candidate) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, candidate)
		}
	}
	return out
}
