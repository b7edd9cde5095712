// Package extract pulls annotated specification text out of Go source
// files. It walks declaration doc comments looking for @openapi markers:
//
//	// @openapi                       -> schema (named after the type, if any)
//	// @openapi<T, U>                 -> blueprint with ordered params T, U
//	// @openapi-fragment Name(p1, p2) -> fragment with ordered params p1, p2
//
// The annotation body is the remaining comment text with the common
// indentation stripped. Every item records the 1-based line of its comment
// so later stages can map failures back to the annotation.
package extract

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"github.com/oasforge/oasforge/pkg/errors"
)

// Kind discriminates the annotation variants an item can carry.
type Kind int

// Annotation kinds.
const (
	KindSchema Kind = iota
	KindFragment
	KindBlueprint
)

// Item is one extracted annotation.
type Item struct {
	Kind   Kind
	Name   string   // empty for unnamed schemas
	Params []string // ordered; blueprints and fragments only
	Body   string
	Line   int // 1-based line of the annotation comment
}

const (
	fragmentMarker = "@openapi-fragment"
	schemaMarker   = "@openapi"
)

// FromFile extracts all annotation items from one Go source file, in
// declaration order.
func FromFile(path string) ([]Item, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return FromSource(path, src)
}

// FromSource extracts annotation items from Go source held in memory.
// filename is used for error reporting and line provenance.
func FromSource(filename string, src []byte) ([]Item, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.NewParseError("go", filename, err.Error(), err)
	}

	var items []Item

	appendDoc := func(doc *ast.CommentGroup, declName string) {
		if doc == nil {
			return
		}
		if item, ok := classify(doc.Text(), declName, fset.Position(doc.Pos()).Line); ok {
			items = append(items, item)
		}
	}

	// Package doc comment may carry file-level fragments or schemas.
	appendDoc(file.Doc, "")

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			appendDoc(d.Doc, genDeclName(d))
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					appendDoc(ts.Doc, ts.Name.Name)
				}
			}
		case *ast.FuncDecl:
			appendDoc(d.Doc, "")
		}
	}

	return items, nil
}

// genDeclName returns the declared type name when the declaration holds a
// single type spec; grouped declarations attach docs per spec instead.
func genDeclName(d *ast.GenDecl) string {
	if d.Tok == token.TYPE && len(d.Specs) == 1 {
		if ts, ok := d.Specs[0].(*ast.TypeSpec); ok {
			return ts.Name.Name
		}
	}
	return ""
}

// classify turns one doc comment into an annotation item, if it carries an
// @openapi marker.
func classify(doc, declName string, line int) (Item, bool) {
	text := unindent(doc)
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(trimmed, fragmentMarker):
		head, body := splitHead(trimmed, fragmentMarker)
		name, params := parseNameAndParams(head)
		if name == "" {
			return Item{}, false
		}
		return Item{Kind: KindFragment, Name: name, Params: params, Body: body, Line: line}, true

	case strings.HasPrefix(trimmed, schemaMarker+"<"):
		head, body := splitHead(trimmed, schemaMarker)
		params := parseAngleParams(head)
		if declName == "" {
			return Item{}, false
		}
		return Item{Kind: KindBlueprint, Name: declName, Params: params, Body: body, Line: line}, true

	case strings.HasPrefix(trimmed, schemaMarker):
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, schemaMarker))
		if body == "" {
			return Item{}, false
		}
		return Item{Kind: KindSchema, Name: declName, Body: body, Line: line}, true
	}

	return Item{}, false
}

// splitHead separates the marker line from the annotation body.
func splitHead(text, marker string) (head, body string) {
	rest := strings.TrimPrefix(text, marker)
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		return strings.TrimSpace(rest[:idx]), strings.TrimRight(rest[idx+1:], "\n ")
	}
	return strings.TrimSpace(rest), ""
}

// parseNameAndParams parses "Name" or "Name(p1, p2)".
func parseNameAndParams(head string) (string, []string) {
	open := strings.IndexByte(head, '(')
	if open < 0 {
		return strings.TrimSpace(head), nil
	}
	name := strings.TrimSpace(head[:open])
	inner := strings.TrimSuffix(strings.TrimSpace(head[open+1:]), ")")
	return name, splitParams(inner)
}

// parseAngleParams parses "<T, U>".
func parseAngleParams(head string) []string {
	inner := strings.TrimPrefix(head, "<")
	if idx := strings.IndexByte(inner, '>'); idx >= 0 {
		inner = inner[:idx]
	}
	return splitParams(inner)
}

func splitParams(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	parts := strings.Split(inner, ",")
	params := make([]string, 0, len(parts))
	for _, part := range parts {
		params = append(params, strings.TrimSpace(part))
	}
	return params
}

// unindent strips the strictly common leading-space indent from all
// non-empty lines, so annotation bodies written flush with the comment
// text come out at column zero.
func unindent(text string) string {
	lines := strings.Split(text, "\n")

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return text
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		}
	}
	return strings.Join(lines, "\n")
}
