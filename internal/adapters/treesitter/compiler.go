// Package treesitter implements the compiler port on top of the tree-sitter
// TypeScript grammar.
package treesitter

import (
	"cmp"
	"slices"

	ts "github.com/tree-sitter/go-tree-sitter"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler parses, analyzes and emits TypeScript sources.
type Compiler struct {
	calls   *ts.Query
	imports *ts.Query
}

// New compiles the embedded queries and returns a ready Compiler.
func New() (*Compiler, error) {
	calls, err := loadQuery("calls")
	if err != nil {
		return nil, err
	}
	imports, err := loadQuery("imports")
	if err != nil {
		calls.Close()
		return nil, err
	}
	return &Compiler{calls: calls, imports: imports}, nil
}

// Close releases the compiled queries.
func (c *Compiler) Close() {
	c.calls.Close()
	c.imports.Close()
}

// Parse builds the syntax model of a TypeScript source: its imports, its
// receiver.method call sites and any syntax diagnostics.
func (c *Compiler) Parse(path string, text []byte) (*domain.SourceFile, error) {
	tree := parse(text)
	if tree == nil {
		return nil, zerr.With(domain.ErrParseFailed, "path", path)
	}
	defer tree.Close()
	root := tree.RootNode()

	file := &domain.SourceFile{Path: path, Text: text}
	file.Imports = c.collectImports(root, text)
	for _, site := range c.collectSites(root, text) {
		file.AddSite(site)
	}
	file.Diagnostics = syntaxDiagnostics(root, path)
	return file, nil
}

func (c *Compiler) collectImports(root *ts.Node, text []byte) []domain.Import {
	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := c.imports.CaptureNames()
	var out []domain.Import
	matches := cursor.Matches(c.imports, root, text)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var imp domain.Import
		topLevel := true
		for _, capture := range match.Captures {
			node := capture.Node
			switch names[capture.Index] {
			case "import", "reexport", "require":
				topLevel = node.Parent() != nil && node.Parent().Kind() == "program"
				imp.TypeOnly = hasToken(&node, "type")
				imp.Line = int(node.StartPosition().Row) + 1
				if names[capture.Index] == "import" {
					imp.Namespace = namespaceAlias(&node, text)
				}
			case "import.source", "reexport.source", "require.source":
				imp.Specifier = stringValue(&node, text)
			case "require.alias":
				imp.Namespace = node.Utf8Text(text)
			}
		}
		if topLevel && imp.Specifier != "" {
			out = append(out, imp)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Import) int { return cmp.Compare(a.Line, b.Line) })
	return out
}

func (c *Compiler) collectSites(root *ts.Node, text []byte) []domain.CallSite {
	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := c.calls.CaptureNames()
	var out []domain.CallSite
	matches := cursor.Matches(c.calls, root, text)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var site domain.CallSite
		for _, capture := range match.Captures {
			node := capture.Node
			switch names[capture.Index] {
			case "call":
				site.Source = rangeOf(&node)
				site.Binding = bindingName(&node, text)
			case "call.receiver":
				site.Receiver = node.Utf8Text(text)
			case "call.method":
				site.Method = node.Utf8Text(text)
				site.MethodSource = rangeOf(&node)
			case "call.args":
				site.ArgsSource = rangeOf(&node)
				site.Args = parseArgs(&node, text)
			}
		}
		out = append(out, site)
	}
	slices.SortFunc(out, func(a, b domain.CallSite) int {
		return cmp.Or(cmp.Compare(a.Source.Start, b.Source.Start), cmp.Compare(b.Source.End, a.Source.End))
	})
	return out
}

// namespaceAlias returns x for `import * as x from "..."`.
func namespaceAlias(stmt *ts.Node, text []byte) string {
	clause := childOfKind(stmt, "import_clause")
	if clause == nil {
		return ""
	}
	ns := childOfKind(clause, "namespace_import")
	if ns == nil {
		return ""
	}
	if id := childOfKind(ns, "identifier"); id != nil {
		return id.Utf8Text(text)
	}
	return ""
}

func parseArgs(args *ts.Node, text []byte) []domain.Arg {
	var out []domain.Arg
	for i := range args.NamedChildCount() {
		node := args.NamedChild(i)
		if node == nil || node.Kind() == "comment" {
			continue
		}
		arg := domain.Arg{Kind: domain.ArgRaw, Value: node.Utf8Text(text), Source: rangeOf(node)}
		switch node.Kind() {
		case "string":
			arg.Kind = domain.ArgString
			arg.Value = stringValue(node, text)
		case "number":
			if n, ok := parseNumber(arg.Value); ok {
				arg.Kind = domain.ArgNumber
				arg.Number = n
			}
		case "undefined":
			arg.Kind = domain.ArgUndefined
		}
		out = append(out, arg)
	}
	return out
}

// transparent wraps an expression without changing its value.
var transparent = map[string]bool{
	"parenthesized_expression": true,
	"as_expression":            true,
	"satisfies_expression":     true,
	"non_null_expression":      true,
}

// bindingName returns the name the call result is stored under, if any.
func bindingName(call *ts.Node, text []byte) string {
	node := call
	parent := node.Parent()
	for parent != nil && transparent[parent.Kind()] {
		node, parent = parent, parent.Parent()
	}
	if parent == nil {
		return ""
	}
	var name *ts.Node
	switch parent.Kind() {
	case "variable_declarator", "public_field_definition":
		name = parent.ChildByFieldName("name")
	case "assignment_expression":
		name = parent.ChildByFieldName("left")
		if name != nil && name.Kind() == "member_expression" {
			name = name.ChildByFieldName("property")
		}
	case "pair":
		name = parent.ChildByFieldName("key")
	}
	if name == nil {
		return ""
	}
	switch name.Kind() {
	case "identifier", "property_identifier":
		return name.Utf8Text(text)
	case "string":
		return stringValue(name, text)
	}
	return ""
}

func syntaxDiagnostics(root *ts.Node, path string) []domain.Diagnostic {
	if !root.HasError() {
		return nil
	}
	var out []domain.Diagnostic
	var visit func(n *ts.Node)
	visit = func(n *ts.Node) {
		switch {
		case n.IsMissing():
			out = append(out, diagnosticAt(n, path, 1005, "'"+n.Kind()+"' expected."))
			return
		case n.IsError():
			out = append(out, diagnosticAt(n, path, 1128, "Declaration or statement expected."))
			return
		case !n.HasError():
			return
		}
		for i := range n.ChildCount() {
			visit(n.Child(i))
		}
	}
	visit(root)
	return out
}

func diagnosticAt(n *ts.Node, path string, code int, msg string) domain.Diagnostic {
	pos := n.StartPosition()
	return domain.Diagnostic{
		File:     path,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column) + 1,
		Severity: domain.SeverityError,
		Code:     code,
		Message:  msg,
	}
}

func rangeOf(n *ts.Node) domain.Range {
	return domain.Range{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func childOfKind(n *ts.Node, kind string) *ts.Node {
	for i := range n.ChildCount() {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// hasToken reports whether n has a direct anonymous child spelled tok.
func hasToken(n *ts.Node, tok string) bool {
	for i := range n.ChildCount() {
		if c := n.Child(i); c != nil && !c.IsNamed() && c.Kind() == tok {
			return true
		}
	}
	return false
}
