// Package preprocess expands @insert and @extend directives against the
// registry's fragments. Directives are line-oriented: one directive line is
// replaced by zero or more expanded fragment lines, re-indented to the
// directive's indentation.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/oasforge/oasforge/pkg/logging"
	"github.com/oasforge/oasforge/pkg/registry"
)

// Directive patterns are immutable and shared process-wide.
var (
	insertRe = regexp.MustCompile(`@insert\s+([a-zA-Z0-9_]+)(?:\((.*)\))?`)
	extendRe = regexp.MustCompile(`@extend\s+([a-zA-Z0-9_]+)(?:\((.*)\))?`)
)

// Preprocessor expands directives against a registry's fragments.
type Preprocessor struct {
	registry *registry.Registry
	logger   *zerolog.Logger
}

// New creates a Preprocessor over the given registry.
func New(reg *registry.Registry) *Preprocessor {
	return &Preprocessor{
		registry: reg,
		logger:   logging.Default(),
	}
}

// WithLogger overrides the logger used for missing-fragment warnings.
func (p *Preprocessor) WithLogger(logger *zerolog.Logger) *Preprocessor {
	p.logger = logger
	return p
}

// Process expands all @insert and @extend directives in content. Each call
// performs one expansion pass; directives introduced by an expanded fragment
// body are resolved by later passes, not recursively within this call.
// Unknown fragment names leave the directive line unchanged.
func (p *Preprocessor) Process(content string) string {
	lines := strings.Split(content, "\n")
	newLines := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if caps := insertRe.FindStringSubmatch(line); caps != nil {
			newLines = p.expandInsert(newLines, line, caps[1], caps[2])
			continue
		}

		if caps := extendRe.FindStringSubmatch(line); caps != nil {
			var skipNext bool
			newLines, skipNext = p.expandExtend(newLines, lines, i, caps[1], caps[2])
			if skipNext {
				i++
			}
			continue
		}

		newLines = append(newLines, line)
	}

	return strings.Join(newLines, "\n")
}

// expandInsert splices a fragment body in place of an @insert line.
func (p *Preprocessor) expandInsert(out []string, line, name, argsStr string) []string {
	fragment, ok := p.registry.Fragment(name)
	if !ok {
		p.logger.Warn().Str("fragment", name).Msg("Fragment not found for @insert")
		return append(out, line)
	}

	expanded := substituteArgs(fragment.Body, fragment.Params, parseArgs(argsStr))
	return spliceIndented(out, line, expanded)
}

// expandExtend splices a fragment body like @insert, then applies the narrow
// structural collision check: if the single line immediately following the
// directive declares a key the fragment already declares at its top level,
// that one line is dropped so the fragment's declaration is authoritative and
// the user's nested content merges under it at the value-level merge stage.
func (p *Preprocessor) expandExtend(out []string, lines []string, idx int, name, argsStr string) ([]string, bool) {
	fragment, ok := p.registry.Fragment(name)
	if !ok {
		p.logger.Warn().Str("fragment", name).Msg("Fragment not found for @extend")
		return append(out, lines[idx]), false
	}

	expanded := substituteArgs(fragment.Body, fragment.Params, parseArgs(argsStr))
	out = spliceIndented(out, lines[idx], expanded)

	// Only the immediate next line is inspected. This is an intentional
	// narrow heuristic, not a full structural merge.
	if idx+1 < len(lines) {
		if key, ok := declaredKey(lines[idx+1]); ok && topLevelKeys(expanded)[key] {
			return out, true
		}
	}
	return out, false
}

// spliceIndented appends the expanded body re-indented to the directive
// line's indentation. An empty expansion splices nothing.
func spliceIndented(out []string, directiveLine, expanded string) []string {
	if strings.TrimSpace(expanded) == "" {
		return out
	}
	indent := directiveLine[:len(directiveLine)-len(strings.TrimLeft(directiveLine, " \t"))]
	for _, fragLine := range strings.Split(expanded, "\n") {
		out = append(out, indent+fragLine)
	}
	return out
}

// topLevelKeys collects the keys a fragment body declares at zero
// indentation (lines ending in ':').
func topLevelKeys(body string) map[string]bool {
	keys := make(map[string]bool)
	for _, line := range strings.Split(body, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		trimmed := strings.TrimRight(line, " ")
		if strings.HasSuffix(trimmed, ":") {
			keys[strings.TrimSuffix(trimmed, ":")] = true
		}
	}
	return keys
}

// declaredKey extracts the mapping key a line declares, if any.
func declaredKey(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return "", false
	}
	return trimmed[:idx], true
}

// parseArgs splits a directive argument list on commas, trimming whitespace
// and surrounding double quotes from each token.
func parseArgs(argsStr string) []string {
	if strings.TrimSpace(argsStr) == "" {
		return nil
	}
	parts := strings.Split(argsStr, ",")
	args := make([]string, 0, len(parts))
	for _, part := range parts {
		args = append(args, strings.Trim(strings.TrimSpace(part), `"`))
	}
	return args
}

// substituteArgs replaces {{param}} placeholders positionally. Extra
// placeholders are left verbatim; extra args are ignored.
func substituteArgs(body string, params, args []string) string {
	for i, param := range params {
		if i >= len(args) {
			break
		}
		body = strings.ReplaceAll(body, "{{"+param+"}}", args[i])
	}
	return body
}
