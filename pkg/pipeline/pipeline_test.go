package pipeline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/oasforge/oasforge/pkg/errors"
	"github.com/oasforge/oasforge/pkg/logging"
	"github.com/oasforge/oasforge/pkg/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func joined(snippets []pipeline.Snippet) string {
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n")
}

func TestRunNoFiles(t *testing.T) {
	p := pipeline.New(pipeline.WithLogger(&logging.Nop))
	_, err := p.Run([]string{t.TempDir()}, nil)
	assert.True(t, pkgerrors.IsNoFilesFound(err))
}

func TestRunFilesWithoutAnnotationsIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.go", "package api\n\ntype User struct{}\n")

	p := pipeline.New(pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, nil)
	require.NoError(t, err)
	assert.Empty(t, snippets)
}

func TestRunIgnoresUnrecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "openapi: 3.0.0")
	writeFile(t, dir, "api.yaml", "paths: {}")

	p := pipeline.New(pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, nil)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "paths: {}", snippets[0].Content)
}

func TestRunStandaloneIncludes(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	writeFile(t, dir, "a.yaml", "a: 1")
	include := writeFile(t, other, "extra.json", `{"b": 2}`)

	p := pipeline.New(pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, []string{include})
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	// Walked files come first (sorted), includes after in listed order.
	assert.Equal(t, "a: 1", snippets[0].Content)
	assert.Equal(t, `{"b": 2}`, snippets[1].Content)
}

func TestRunFullPipeline(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "fragments.go", `package api

// @openapi-fragment CommonError(code)
// description: Error {{code}}
// content:
//   application/json:
//     schema:
//       $ref: $ErrorModel
type fragments struct{}
`)

	writeFile(t, dir, "models.go", `package api

// @openapi<T>
// type: object
// properties:
//   data:
//     $ref: $T
type Wrapper struct{}

// @openapi
// type: object
type ErrorModel struct{}

// @openapi
// type: object
type User struct{}
`)

	writeFile(t, dir, "routes.go", `package api

// @openapi
// paths:
//   /test:
//     get:
//       responses:
//         '200':
//           content:
//             application/json:
//               schema:
//                 $ref: $Wrapper<User>
//         '400':
//           @insert CommonError("Bad Request")
//         '401':
//           @insert CommonError
func routes() {}
`)

	p := pipeline.New(pipeline.WithVersion("1.2.3"), pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, nil)
	require.NoError(t, err)

	merged := joined(snippets)

	// Fragment insertion with positional args.
	assert.Contains(t, merged, "description: Error Bad Request")
	// No args: the placeholder stays visible.
	assert.Contains(t, merged, "description: Error {{code}}")

	// Generic usage resolved to a pointer at the usage site.
	assert.Contains(t, merged, `$ref: "#/components/schemas/Wrapper_User"`)

	// Concrete schema injected with its own resolved reference.
	assert.Contains(t, merged, "Wrapper_User:")
	assert.Contains(t, merged, `$ref: "#/components/schemas/User"`)

	// The registry carries the generated schema exactly once.
	assert.True(t, p.Registry().HasConcreteSchema("Wrapper_User"))
	assert.Len(t, p.Registry().ConcreteSchemaNames(), 1)
}

func TestRunNestedFragmentDirectives(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "fragments.go", `package api

// @openapi-fragment Outer
// outer: 1
// @insert Inner
type a struct{}

// @openapi-fragment Inner
// inner: 2
type b struct{}

// @openapi
// top:
//   @insert Outer
func c() {}
`)

	p := pipeline.New(pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, nil)
	require.NoError(t, err)

	merged := joined(snippets)
	// The inner directive spliced by Outer resolves on a later pass.
	assert.Contains(t, merged, "outer: 1")
	assert.Contains(t, merged, "inner: 2")
	assert.NotContains(t, merged, "@insert")
}

func TestRunVersionPlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "root.yaml", "openapi: 3.0.0\ninfo:\n  title: T\n  version: \"{{PKG_VERSION}}\"")

	p := pipeline.New(pipeline.WithVersion("9.9.9"), pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, nil)
	require.NoError(t, err)
	assert.Contains(t, snippets[0].Content, `version: "9.9.9"`)
}

func TestRunDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "b: 1")
	writeFile(t, dir, "a.yaml", "a: 1")
	writeFile(t, dir, "c.yaml", "c: 1")

	p := pipeline.New(pipeline.WithLogger(&logging.Nop))
	snippets, err := p.Run([]string{dir}, nil)
	require.NoError(t, err)
	require.Len(t, snippets, 3)
	assert.Equal(t, "a: 1", snippets[0].Content)
	assert.Equal(t, "b: 1", snippets[1].Content)
	assert.Equal(t, "c: 1", snippets[2].Content)
}
