// Package pipeline orchestrates the generation run: it discovers input
// files, indexes their annotations into the registry, expands macros and
// directives, monomorphizes generic references, injects generated schemas,
// and substitutes smart references. The output is an ordered list of
// fully-resolved snippets ready for the merger.
package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/oasforge/oasforge/pkg/errors"
	"github.com/oasforge/oasforge/pkg/extract"
	"github.com/oasforge/oasforge/pkg/generics"
	"github.com/oasforge/oasforge/pkg/logging"
	"github.com/oasforge/oasforge/pkg/preprocess"
	"github.com/oasforge/oasforge/pkg/registry"
)

// maxDirectivePasses bounds repeated directive expansion. Fragments may
// insert further directives; those resolve on the following pass rather
// than recursively, so expansion runs until stable or the bound is hit.
const maxDirectivePasses = 8

// defaultVersion substitutes {{PKG_VERSION}} when no version is configured.
const defaultVersion = "0.0.0"

// Pipeline runs the five-pass generation over a set of input files. It is
// single-threaded; the registry is owned by the pipeline for the run's
// duration and never accessed concurrently.
type Pipeline struct {
	version  string
	logger   *zerolog.Logger
	registry *registry.Registry
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithVersion sets the value substituted for the {{PKG_VERSION}} placeholder.
func WithVersion(version string) Option {
	return func(p *Pipeline) {
		if version != "" {
			p.version = version
		}
	}
}

// WithLogger overrides the pipeline's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline with a fresh registry.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		version:  defaultVersion,
		logger:   logging.Default(),
		registry: registry.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry exposes the pipeline's symbol table. It is read-only once Run
// returns.
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}

// Run discovers files under the given roots plus the explicit includes and
// runs all passes over them. Snippets come back in file order, then item
// order within a file, followed by generated schemas. Finding no files at
// all is fatal; finding files with no annotations is not.
func (p *Pipeline) Run(roots, includes []string) ([]Snippet, error) {
	paths, err := p.discoverFiles(roots, includes)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.ErrNoFilesFound
	}

	// Pass 1: indexing.
	snippets, err := p.index(paths)
	if err != nil {
		return nil, err
	}

	// Pass 2: macro expansion, then directive expansion. Directives spliced
	// in by a fragment are picked up by the next iteration.
	mono := generics.New(p.registry).WithLogger(p.logger)
	pre := preprocess.New(p.registry).WithLogger(p.logger)
	for i, snippet := range snippets {
		content := p.expandMacros(snippet.Content, mono)
		for pass := 0; pass < maxDirectivePasses; pass++ {
			expanded := pre.Process(content)
			if expanded == content {
				break
			}
			content = p.expandMacros(expanded, mono)
		}
		snippets[i].Content = content
	}

	// Pass 3: monomorphization of generic usages the macro pass missed
	// (multi-line or nested invocations).
	for i, snippet := range snippets {
		snippets[i].Content = mono.Process(snippet.Content)
	}

	// Pass 4: inject generated schemas as standalone snippets.
	snippets = append(snippets, p.generatedSnippets()...)

	// Pass 5: smart-reference and variable substitution.
	known := p.knownSchemaNames()
	for i, snippet := range snippets {
		content := substituteSmartRefs(snippet.Content, known)
		snippets[i].Content = finalize(content, p.version)
	}

	return snippets, nil
}

// index populates the registry from every recognized file and queues the
// schema bodies and standalone documents as snippets.
func (p *Pipeline) index(paths []string) ([]Snippet, error) {
	var snippets []Snippet

	for _, path := range paths {
		switch ext(path) {
		case ".go":
			items, err := extract.FromFile(path)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				switch item.Kind {
				case extract.KindFragment:
					p.registry.InsertFragment(item.Name, item.Params, item.Body)
				case extract.KindBlueprint:
					p.registry.InsertBlueprint(item.Name, item.Params, item.Body)
				case extract.KindSchema:
					content := item.Body
					if item.Name != "" {
						p.registry.InsertSchema(item.Name, item.Body)
						// Named schemas declare themselves under the schema
						// container; unnamed bodies (paths, tags) merge as-is.
						content = wrapSchema(item.Name, item.Body)
					}
					snippets = append(snippets, Snippet{Content: content, File: path, Line: item.Line})
				}
			}
		case ".json", ".yaml", ".yml":
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.WrapIO("read", path, err)
			}
			snippets = append(snippets, Snippet{Content: string(content), File: path, Line: 1})
		}
	}

	p.logger.Debug().
		Int("snippets", len(snippets)).
		Int("schemas", len(p.registry.SchemaNames())).
		Msg("Indexing complete")

	return snippets, nil
}

// generatedSnippets wraps every concrete schema as a standalone snippet
// declaring it under components.schemas, keyed by its mangled name. Names
// are sorted for deterministic output.
func (p *Pipeline) generatedSnippets() []Snippet {
	names := p.registry.ConcreteSchemaNames()
	sort.Strings(names)

	snippets := make([]Snippet, 0, len(names))
	for _, name := range names {
		body, _ := p.registry.ConcreteSchema(name)
		snippets = append(snippets, Snippet{
			Content: wrapSchema(name, body),
			File:    "generated:" + name,
			Line:    1,
		})
	}
	return snippets
}

// wrapSchema declares a schema body under components.schemas keyed by name.
func wrapSchema(name, body string) string {
	var b strings.Builder
	b.WriteString("components:\n  schemas:\n    ")
	b.WriteString(name)
	b.WriteString(":\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("      ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// knownSchemaNames is the set of names eligible for smart-reference
// substitution: extracted schemas plus generated concrete schemas.
func (p *Pipeline) knownSchemaNames() map[string]bool {
	known := make(map[string]bool)
	for _, name := range p.registry.SchemaNames() {
		known[name] = true
	}
	for _, name := range p.registry.ConcreteSchemaNames() {
		known[name] = true
	}
	return known
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
