// Package oasforge turns annotated Go source comments and standalone spec
// fragments into one merged OpenAPI document.
//
// Example usage:
//
//	gen := oasforge.New(
//	    oasforge.WithInput("./internal/api"),
//	    oasforge.WithOutput("openapi.yaml"),
//	)
//	if err := gen.Generate(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package oasforge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/oasforge/oasforge/pkg/errors"
	"github.com/oasforge/oasforge/pkg/logging"
	"github.com/oasforge/oasforge/pkg/merger"
	"github.com/oasforge/oasforge/pkg/pipeline"
)

// outputFilePermissions is used for the generated document.
const outputFilePermissions = 0o644

// Generator is the main entry point for generating OpenAPI definitions.
type Generator struct {
	inputs   []string
	includes []string
	output   string
	version  string
	logger   *zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithInput adds root directories to scan recursively.
func WithInput(paths ...string) Option {
	return func(g *Generator) {
		g.inputs = append(g.inputs, paths...)
	}
}

// WithInclude adds specific files to include (e.g. .json, .yaml).
func WithInclude(paths ...string) Option {
	return func(g *Generator) {
		g.includes = append(g.includes, paths...)
	}
}

// WithOutput sets the output file path. The extension selects the format:
// .json for JSON, anything else for YAML.
func WithOutput(path string) Option {
	return func(g *Generator) {
		g.output = path
	}
}

// WithVersion sets the value substituted for {{PKG_VERSION}} placeholders.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithLogger overrides the generator's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate executes the generation process: scan and resolve all inputs,
// merge the resulting snippets into one document, and write it out.
func (g *Generator) Generate(ctx context.Context) error {
	if g.output == "" {
		return errors.NewValidationError("output", "output path is required")
	}

	g.logger.Info().
		Strs("inputs", g.inputs).
		Strs("includes", g.includes).
		Msg("Scanning inputs")

	p := pipeline.New(
		pipeline.WithVersion(g.version),
		pipeline.WithLogger(g.logger),
	)
	snippets, err := p.Run(g.inputs, g.includes)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	g.logger.Info().Int("snippets", len(snippets)).Msg("Merging snippets")
	merged, err := merger.Merge(snippets)
	if err != nil {
		return err
	}

	if err := g.write(merged); err != nil {
		return err
	}

	g.logger.Info().Str("output", g.output).Msg("Written output")
	return nil
}

// write serializes the merged document to the output path, creating parent
// directories as needed.
func (g *Generator) write(merged any) error {
	if dir := filepath.Dir(g.output); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(g.output)) {
	case ".json":
		data, err = json.MarshalIndent(plainValue(merged), "", "  ")
		if err != nil {
			return errors.WrapParse("json", g.output, err)
		}
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(merged)
		if err != nil {
			return errors.WrapParse("yaml", g.output, err)
		}
	}

	return errors.WrapIO("write", g.output, os.WriteFile(g.output, data, outputFilePermissions))
}

// plainValue converts order-preserving yaml.MapSlice trees into plain maps
// for JSON encoding. JSON object key order is not significant; YAML output
// keeps the ordered representation.
func plainValue(value any) any {
	switch v := value.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(v))
		for _, item := range v {
			m[fmt.Sprint(item.Key)] = plainValue(item.Value)
		}
		return m
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainValue(item)
		}
		return out
	default:
		return value
	}
}
