package merger_test

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/oasforge/oasforge/pkg/errors"
	"github.com/oasforge/oasforge/pkg/merger"
	"github.com/oasforge/oasforge/pkg/pipeline"
)

func snip(content string) pipeline.Snippet {
	return pipeline.Snippet{Content: content, File: "test.yaml", Line: 1}
}

func mustYAML(t *testing.T, value any) string {
	t.Helper()
	out, err := yaml.Marshal(value)
	require.NoError(t, err)
	return string(out)
}

func TestMergeSimple(t *testing.T) {
	root := "openapi: 3.0.0\n" +
		"info:\n" +
		"  title: Test\n" +
		"  version: \"1.0\"\n" +
		"paths:\n" +
		"  /foo:\n" +
		"    get:\n" +
		"      description: root\n"
	fragment := "paths:\n" +
		"  /bar:\n" +
		"    post:\n" +
		"      description: fragment\n"

	result, err := merger.Merge([]pipeline.Snippet{snip(root), snip(fragment)})
	require.NoError(t, err)

	out := mustYAML(t, result)
	assert.Contains(t, out, "/foo")
	assert.Contains(t, out, "/bar")
}

func TestNoRoot(t *testing.T) {
	_, err := merger.Merge([]pipeline.Snippet{snip("paths: {}")})
	assert.True(t, pkgerrors.IsNoRootFound(err))
}

func TestMultipleRoots(t *testing.T) {
	r1 := "openapi: \"3.0\"\ninfo: {title: A}"
	r2 := "openapi: \"3.0\"\ninfo: {title: B}"
	_, err := merger.Merge([]pipeline.Snippet{snip(r1), snip(r2)})
	assert.True(t, pkgerrors.IsMultipleRootsFound(err))
}

func TestMappingUnionAndRecursion(t *testing.T) {
	root := "openapi: 3.0.0\n" +
		"info: {title: T, version: \"1\"}\n" +
		"components:\n" +
		"  schemas:\n" +
		"    User:\n" +
		"      type: object\n"
	other := "components:\n" +
		"  schemas:\n" +
		"    Order:\n" +
		"      type: object\n"

	result, err := merger.Merge([]pipeline.Snippet{snip(root), snip(other)})
	require.NoError(t, err)

	out := mustYAML(t, result)
	// Disjoint keys union, shared keys recurse: both schemas live under the
	// single components.schemas mapping.
	assert.Contains(t, out, "User:")
	assert.Contains(t, out, "Order:")
	assert.Equal(t, 1, countOccurrences(out, "schemas:"))
}

func TestSequenceConcatDedupe(t *testing.T) {
	root := "openapi: 3.0.0\ninfo: {title: T}\ntags: [A, B]"
	other := "tags: [B, C]"

	result, err := merger.Merge([]pipeline.Snippet{snip(root), snip(other)})
	require.NoError(t, err)

	mapping, ok := result.(yaml.MapSlice)
	require.True(t, ok)
	var tags []any
	for _, item := range mapping {
		if item.Key == "tags" {
			tags = item.Value.([]any)
		}
	}
	assert.Equal(t, []any{"A", "B", "C"}, tags)
}

func TestScalarConflictLaterWins(t *testing.T) {
	root := "openapi: 3.0.0\ninfo: {title: T}\nx-flag: first"
	s1 := "x-flag: second"
	s2 := "x-flag: third"

	result, err := merger.Merge([]pipeline.Snippet{snip(root), snip(s1), snip(s2)})
	require.NoError(t, err)

	out := mustYAML(t, result)
	assert.Contains(t, out, "x-flag: third")
	assert.NotContains(t, out, "second")
}

func TestEmptySnippetIsFatal(t *testing.T) {
	root := "openapi: 3.0.0\ninfo: {title: T}\npaths: {}"
	empty := pipeline.Snippet{
		Content: "# just a comment\n",
		File:    "notes.yaml",
		Line:    1,
	}

	_, err := merger.Merge([]pipeline.Snippet{snip(root), empty})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyDocument)

	var smErr *pkgerrors.SourceMapError
	require.ErrorAs(t, err, &smErr)
	assert.Equal(t, "notes.yaml", smErr.File)
}

func TestParseFailureIsSourceMapped(t *testing.T) {
	bad := pipeline.Snippet{
		Content: "paths:\n  /x:\n    get: [unclosed",
		File:    "handlers.go",
		Line:    42,
	}

	_, err := merger.Merge([]pipeline.Snippet{bad})
	require.Error(t, err)

	var smErr *pkgerrors.SourceMapError
	require.ErrorAs(t, err, &smErr)
	assert.Equal(t, "handlers.go", smErr.File)
	assert.Equal(t, 42, smErr.Line)
	assert.Contains(t, err.Error(), "42 | paths:")
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
