package pipeline

import (
	"regexp"
	"strings"

	"github.com/oasforge/oasforge/pkg/generics"
)

// Macro patterns are immutable and shared process-wide.
var (
	// $Name<Arg, ...> on a single line; nested invocations are left for
	// the monomorphization pass, which parses bracket depth properly.
	genericMacroRe = regexp.MustCompile(`\$([a-zA-Z0-9_]+)<([a-zA-Z0-9_, ]*)>`)

	// $Name[] array-type shorthand.
	arrayMacroRe = regexp.MustCompile(`\$([a-zA-Z0-9_]+)\[\]`)

	// Bare "@insert Name" with no argument list, optionally a list item.
	insertMacroRe = regexp.MustCompile(`^(\s*)(-)?\s*@insert\s+([a-zA-Z0-9_]+)$`)
)

// expandMacros applies the language-shorthand macros line by line:
// inline generic flattening (instantiating via the monomorphizer), the
// array-type shorthand, and the parameterless @insert shorthand for
// referencing shared parameters.
func (p *Pipeline) expandMacros(content string, mono *generics.Monomorphizer) string {
	lines := strings.Split(content, "\n")
	newLines := make([]string, 0, len(lines))

	for _, line := range lines {
		// Inline generic flattening: $Page<User> becomes $Page_User and
		// the concrete schema is instantiated on the spot.
		for {
			caps := genericMacroRe.FindStringSubmatch(line)
			if caps == nil {
				break
			}
			concrete := mono.Monomorphize(caps[1], caps[2])
			line = strings.Replace(line, caps[0], "$"+concrete, 1)
		}

		// Array shorthand: $User[] becomes an inline array mapping whose
		// items reference $User, resolved by smart-ref substitution later.
		line = arrayMacroRe.ReplaceAllString(line, `{ type: array, items: { $$ref: $$$1 } }`)

		// Parameterless @insert of a name that is not a fragment is a
		// shared-parameter reference, emitted as a list item.
		if caps := insertMacroRe.FindStringSubmatch(line); caps != nil {
			if !p.registry.HasFragment(caps[3]) {
				newLines = append(newLines, caps[1]+`- $ref: "#/components/parameters/`+caps[3]+`"`)
				continue
			}
		}

		newLines = append(newLines, line)
	}

	return strings.Join(newLines, "\n")
}
