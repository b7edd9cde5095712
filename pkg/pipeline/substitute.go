package pipeline

import "strings"

// schemaRefPrefix is the pointer prefix substituted for smart references.
const schemaRefPrefix = "#/components/schemas/"

// substituteSmartRefs replaces bare $Identifier tokens whose identifier is
// a known schema name with a quoted schema pointer. Tokens already inside
// quotes keep their quoting; anything else ($100, unknown names, escaped
// \$ sequences) passes through untouched.
func substituteSmartRefs(content string, known map[string]bool) string {
	var result strings.Builder
	result.Grow(len(content))

	runes := []rune(content)
	i := 0
	for i < len(runes) {
		if runes[i] != '$' {
			result.WriteRune(runes[i])
			i++
			continue
		}

		// Escaped literal dollar: leave for finalize to unescape.
		if i > 0 && runes[i-1] == '\\' {
			result.WriteRune(runes[i])
			i++
			continue
		}

		j := i + 1
		if j >= len(runes) || !isIdentStart(runes[j]) {
			result.WriteRune(runes[i])
			i++
			continue
		}
		for j < len(runes) && isIdentPart(runes[j]) {
			j++
		}

		ident := string(runes[i+1 : j])
		if !known[ident] {
			result.WriteString(string(runes[i:j]))
			i = j
			continue
		}

		quoted := i > 0 && runes[i-1] == '"'
		if !quoted {
			result.WriteByte('"')
		}
		result.WriteString(schemaRefPrefix)
		result.WriteString(ident)
		if !quoted {
			result.WriteByte('"')
		}
		i = j
	}

	return result.String()
}

// finalize resolves literal-dollar escapes and variable placeholders.
func finalize(content, version string) string {
	content = strings.ReplaceAll(content, `\$`, "$")
	return strings.ReplaceAll(content, "{{PKG_VERSION}}", version)
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
