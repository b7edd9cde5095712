// Package generics resolves generic schema references like $Page<User>
// against registered blueprints, producing concrete schemas under mangled
// names (monomorphization).
package generics

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/oasforge/oasforge/pkg/logging"
	"github.com/oasforge/oasforge/pkg/registry"
)

// maxDepth bounds recursive blueprint resolution. Blueprints that reference
// themselves (directly or via another blueprint) would otherwise recurse
// forever; past this depth the reference is left dangling.
const maxDepth = 32

// Monomorphizer scans text for $Name<Args> invocations and instantiates the
// matching blueprints. It is the only component that mutates the registry
// after indexing.
type Monomorphizer struct {
	registry *registry.Registry
	logger   *zerolog.Logger
}

// New creates a Monomorphizer over the given registry.
func New(reg *registry.Registry) *Monomorphizer {
	return &Monomorphizer{
		registry: reg,
		logger:   logging.Default(),
	}
}

// WithLogger overrides the logger used for dangling-reference warnings.
func (m *Monomorphizer) WithLogger(logger *zerolog.Logger) *Monomorphizer {
	m.logger = logger
	return m
}

// Process scans text for generic patterns like $Page<User>, instantiates
// concrete schemas for them, and returns the text with each invocation
// replaced by its mangled reference ($Page_User). Malformed invocations
// (no closing '>') are left untouched.
func (m *Monomorphizer) Process(text string) string {
	return m.resolveInText(text, 0)
}

// Monomorphize instantiates one blueprint against a raw argument list
// (the text between '<' and '>') and returns the mangled concrete name.
func (m *Monomorphizer) Monomorphize(name, argsStr string) string {
	return m.monomorphize(name, argsStr, 0)
}

func (m *Monomorphizer) resolveInText(text string, depth int) string {
	var result strings.Builder
	result.Grow(len(text))

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if runes[i] != '$' || i+1 >= len(runes) || !isAlpha(runes[i+1]) {
			result.WriteRune(runes[i])
			i++
			continue
		}

		// Potential generic start: scan the identifier after '$'.
		start := i
		i++
		for i < len(runes) && isIdent(runes[i]) {
			i++
		}
		name := string(runes[start+1 : i])

		if i >= len(runes) || runes[i] != '<' {
			// Just a regular $Name reference.
			result.WriteString(string(runes[start:i]))
			continue
		}

		// Argument list: advance to the matching '>' respecting nesting.
		i++ // skip <
		argStart := i
		mdepth := 1
		for i < len(runes) && mdepth > 0 {
			switch runes[i] {
			case '<':
				mdepth++
			case '>':
				mdepth--
			}
			i++
		}
		if mdepth > 0 {
			// No closing '>': leave the malformed invocation as written.
			result.WriteString(string(runes[start:]))
			break
		}

		argsStr := string(runes[argStart : i-1])
		concrete := m.monomorphize(name, argsStr, depth)
		result.WriteByte('$')
		result.WriteString(concrete)
	}

	return result.String()
}

func (m *Monomorphizer) monomorphize(name, argsStr string, depth int) string {
	if depth > maxDepth {
		m.logger.Error().
			Str("blueprint", name).
			Int("depth", depth).
			Msg("Generic resolution exceeded max depth, possible blueprint cycle")
		return name
	}

	// Resolve arguments inner-to-outer; nested generics instantiate first.
	args := splitArgs(argsStr)
	resolved := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.Contains(arg, "<") {
			arg = m.resolveInText(arg, depth+1)
		}
		resolved = append(resolved, strings.TrimPrefix(arg, "$"))
	}

	concreteName := mangle(name, resolved)

	// At most one instantiation per distinct tuple.
	if m.registry.HasConcreteSchema(concreteName) {
		return concreteName
	}

	blueprint, ok := m.registry.Blueprint(name)
	if !ok {
		m.logger.Warn().Str("blueprint", name).Msg("Blueprint not found")
		return concreteName
	}

	if len(resolved) != len(blueprint.Params) {
		m.logger.Error().
			Str("blueprint", name).
			Int("expected", len(blueprint.Params)).
			Int("got", len(resolved)).
			Msg("Blueprint argument count mismatch, substituting best-effort")
	}

	body := blueprint.Body
	for idx, param := range blueprint.Params {
		if idx >= len(resolved) {
			break
		}
		body = strings.ReplaceAll(body, "$"+param, "$"+resolved[idx])
	}

	m.registry.InsertConcreteSchema(concreteName, body)
	return concreteName
}

// mangle builds the concrete name for a blueprint and resolved argument
// tuple: Page + [User] -> Page_User; an empty tuple maps to Page_Generic.
func mangle(name string, args []string) string {
	if len(args) == 0 {
		return name + "_Generic"
	}
	return name + "_" + strings.Join(args, "_")
}

// splitArgs splits a raw argument list on top-level commas, respecting
// nested <...> depth so $A<$B<C,D>> stays one argument.
func splitArgs(argsStr string) []string {
	if strings.TrimSpace(argsStr) == "" {
		return nil
	}

	var args []string
	depth := 0
	start := 0
	for i, c := range argsStr {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(argsStr[start:i]))
				start = i + 1
			}
		}
	}
	if start < len(argsStr) {
		args = append(args, strings.TrimSpace(argsStr[start:]))
	}
	return args
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdent(r rune) bool {
	return isAlpha(r) || (r >= '0' && r <= '9') || r == '_'
}
