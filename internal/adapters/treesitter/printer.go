package treesitter

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
)

// Emit prints file as JavaScript. Type syntax is erased, module syntax is
// lowered to opts.ModuleKind and modified call sites are re-rendered from the
// arena. Unmodified text is copied through byte for byte.
func (c *Compiler) Emit(file *domain.SourceFile, opts ports.EmitOptions) ([]byte, error) {
	if file.DeclarationOnly() {
		return nil, nil
	}
	tree := parse(file.Text)
	if tree == nil {
		return nil, zerr.With(domain.ErrEmitFailed, "path", file.Path)
	}
	defer tree.Close()

	kind := opts.ModuleKind
	if kind == "" {
		kind = domain.ModuleCommonJS
	}
	p := &printer{src: file.Text, esm: kind == domain.ModuleES2015, temps: map[string]int{}}
	p.walk(tree.RootNode())
	for i := range file.Sites {
		if site := &file.Sites[i]; site.Modified() {
			p.edits = append(p.edits, edit{start: site.Source.Start, end: site.Source.End, site: site})
		}
	}
	slices.SortStableFunc(p.edits, func(a, b edit) int {
		return cmp.Or(cmp.Compare(a.start, b.start), cmp.Compare(b.end, a.end))
	})

	var out strings.Builder
	body := p.render(0, len(p.src))
	switch {
	case p.esm || !p.module:
		out.WriteString(body)
	case kind == domain.ModuleAMD || kind == domain.ModuleUMD:
		out.WriteString("define([\"require\", \"exports\"], function (require, exports) {\n")
		p.prologue(&out)
		out.WriteString(body)
		out.WriteString("\n});\n")
	default:
		p.prologue(&out)
		out.WriteString(body)
	}
	return []byte(out.String()), nil
}

// edit replaces src[start:end]. Site edits render the call site instead of text.
type edit struct {
	start int
	end   int
	text  string
	site  *domain.CallSite
}

type printer struct {
	src     []byte
	esm     bool
	module  bool
	exports bool
	depth   int
	edits   []edit
	temps   map[string]int
}

func (p *printer) prologue(out *strings.Builder) {
	out.WriteString("\"use strict\";\n")
	if p.exports {
		out.WriteString("Object.defineProperty(exports, \"__esModule\", { value: true });\n")
	}
}

func (p *printer) replace(n *ts.Node, text string) {
	p.edits = append(p.edits, edit{start: int(n.StartByte()), end: int(n.EndByte()), text: text})
}

func (p *printer) remove(n *ts.Node) {
	p.replace(n, "")
}

func (p *printer) replaceRange(start, end uint, text string) {
	p.edits = append(p.edits, edit{start: int(start), end: int(end), text: text})
}

func (p *printer) text(n *ts.Node) string {
	return n.Utf8Text(p.src)
}

// render prints src[start:end] with every edit inside the range applied.
// Edits nested in an applied edit are skipped; site edits render their own interior.
// Insertions only apply at statement level, outside any site.
func (p *printer) render(start, end int) string {
	var sb strings.Builder
	pos := start
	for i := range p.edits {
		e := &p.edits[i]
		if e.start > end {
			break
		}
		if e.start < pos || e.end > end || e.start == e.end && p.depth > 0 {
			continue
		}
		sb.Write(p.src[pos:e.start])
		if e.site != nil {
			sb.WriteString(p.renderSite(e.site))
		} else {
			sb.WriteString(e.text)
		}
		pos = e.end
	}
	sb.Write(p.src[pos:end])
	return sb.String()
}

func (p *printer) renderSite(site *domain.CallSite) string {
	p.depth++
	defer func() { p.depth-- }()

	var sb strings.Builder
	sb.WriteString(p.render(site.Source.Start, site.MethodSource.Start))
	sb.WriteString(site.Method)
	sb.WriteString(p.render(site.MethodSource.End, site.ArgsSource.Start))
	if site.ArgsUnchanged() {
		sb.WriteString(p.render(site.ArgsSource.Start, site.ArgsSource.End))
	} else {
		sb.WriteByte('(')
		for i, arg := range site.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.renderArg(arg))
		}
		sb.WriteByte(')')
	}
	sb.WriteString(p.render(site.ArgsSource.End, site.Source.End))
	return sb.String()
}

func (p *printer) renderArg(arg domain.Arg) string {
	if arg.FromSource() {
		return p.render(arg.Source.Start, arg.Source.End)
	}
	switch arg.Kind {
	case domain.ArgString:
		return quote(arg.Value)
	case domain.ArgNumber:
		return formatNumber(arg.Number)
	case domain.ArgUndefined:
		return "undefined"
	}
	return arg.Value
}

// typeOnly nodes have no runtime representation.
var typeOnly = map[string]bool{
	"interface_declaration":     true,
	"type_alias_declaration":    true,
	"ambient_declaration":       true,
	"function_signature":        true,
	"index_signature":           true,
	"method_signature":          true,
	"abstract_method_signature": true,
	"type_annotation":           true,
	"type_arguments":            true,
	"type_parameters":           true,
	"implements_clause":         true,
	"accessibility_modifier":    true,
	"override_modifier":         true,
	"asserts_annotation":        true,
	"type_predicate_annotation": true,
	"omitting_type_annotation":  true,
	"opting_type_annotation":    true,
}

// typeTokens are keywords that only exist in the type layer.
var typeTokens = map[string]bool{
	"readonly": true,
	"declare":  true,
	"abstract": true,
	"?":        true,
	"!":        true,
}

func (p *printer) walk(n *ts.Node) {
	kind := n.Kind()
	if typeOnly[kind] {
		p.remove(n)
		return
	}
	switch kind {
	case "import_statement":
		p.module = true
		p.importStatement(n)
		return
	case "export_statement":
		p.module = true
		p.exportStatement(n)
		return
	case "enum_declaration":
		p.enum(n)
		return
	case "as_expression", "satisfies_expression":
		expr := n.NamedChild(0)
		p.walk(expr)
		p.replaceRange(expr.EndByte(), n.EndByte(), "")
		return
	case "non_null_expression":
		p.walk(n.NamedChild(0))
		p.replaceRange(n.EndByte()-1, n.EndByte(), "")
		return
	case "type_assertion":
		p.remove(n.NamedChild(0))
		p.walk(n.NamedChild(1))
		return
	case "optional_parameter", "required_parameter", "public_field_definition",
		"abstract_class_declaration", "method_definition":
		p.stripTypeTokens(n)
	}
	for i := range n.ChildCount() {
		p.walk(n.Child(i))
	}
}

func (p *printer) stripTypeTokens(n *ts.Node) {
	for i := range n.ChildCount() {
		c := n.Child(i)
		if c.IsNamed() || !typeTokens[c.Kind()] {
			continue
		}
		end := c.EndByte()
		if next := n.Child(i + 1); next != nil && c.Kind() != "?" && c.Kind() != "!" {
			end = next.StartByte()
		}
		p.replaceRange(c.StartByte(), end, "")
	}
}

// temp returns a fresh local name for the module required as spec.
func (p *printer) temp(spec string) string {
	base := path.Base(spec)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	name := []byte(base)
	for i, ch := range name {
		if !(ch == '_' || ch == '$' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || i > 0 && ch >= '0' && ch <= '9') {
			name[i] = '_'
		}
	}
	p.temps[string(name)]++
	return fmt.Sprintf("%s_%d", name, p.temps[string(name)])
}

func (p *printer) importStatement(n *ts.Node) {
	if hasToken(n, "type") {
		p.remove(n)
		return
	}
	if p.esm {
		p.stripTypeSpecifiers(childOfKind(n, "import_clause"))
		return
	}
	if req := childOfKind(n, "import_require_clause"); req != nil {
		alias := childOfKind(req, "identifier")
		spec := childOfKind(req, "string")
		if alias != nil && spec != nil {
			p.replace(n, fmt.Sprintf("var %s = require(%s);", p.text(alias), p.text(spec)))
		}
		return
	}
	source := n.ChildByFieldName("source")
	if source == nil {
		return
	}
	spec := p.text(source)
	clause := childOfKind(n, "import_clause")
	if clause == nil {
		p.replace(n, fmt.Sprintf("require(%s);", spec))
		return
	}

	var def, ns string
	var named [][2]string
	for i := range clause.NamedChildCount() {
		c := clause.NamedChild(i)
		switch c.Kind() {
		case "identifier":
			def = p.text(c)
		case "namespace_import":
			if id := childOfKind(c, "identifier"); id != nil {
				ns = p.text(id)
			}
		case "named_imports":
			named = p.specifiers(c, "import_specifier")
		}
	}
	if def == "" && len(named) == 0 {
		if ns == "" {
			p.replace(n, fmt.Sprintf("require(%s);", spec))
		} else {
			p.replace(n, fmt.Sprintf("var %s = require(%s);", ns, spec))
		}
		return
	}
	tmp := p.temp(stringValue(source, p.src))
	stmts := []string{fmt.Sprintf("var %s = require(%s);", tmp, spec)}
	if def != "" {
		stmts = append(stmts, fmt.Sprintf("var %s = %s.default;", def, tmp))
	}
	if ns != "" {
		stmts = append(stmts, fmt.Sprintf("var %s = %s;", ns, tmp))
	}
	for _, s := range named {
		stmts = append(stmts, fmt.Sprintf("var %s = %s.%s;", s[1], tmp, s[0]))
	}
	p.replace(n, strings.Join(stmts, " "))
}

// specifiers returns (name, local) pairs of an import or export list,
// skipping type-only entries.
func (p *printer) specifiers(list *ts.Node, kind string) [][2]string {
	var out [][2]string
	for i := range list.NamedChildCount() {
		s := list.NamedChild(i)
		if s.Kind() != kind || hasToken(s, "type") {
			continue
		}
		name := s.ChildByFieldName("name")
		if name == nil {
			continue
		}
		local := name
		if alias := s.ChildByFieldName("alias"); alias != nil {
			local = alias
		}
		out = append(out, [2]string{p.text(name), p.text(local)})
	}
	return out
}

func (p *printer) stripTypeSpecifiers(clause *ts.Node) {
	if clause == nil {
		return
	}
	if list := childOfKind(clause, "named_imports"); list != nil {
		p.stripTypeExports(list, "import_specifier")
	}
}

func (p *printer) stripTypeExports(list *ts.Node, kind string) {
	for i := range list.NamedChildCount() {
		s := list.NamedChild(i)
		if s.Kind() != kind || !hasToken(s, "type") {
			continue
		}
		end := s.EndByte()
		if next := s.NextSibling(); next != nil && next.Kind() == "," {
			end = next.EndByte()
		}
		p.replaceRange(s.StartByte(), end, "")
	}
}

func (p *printer) exportStatement(n *ts.Node) {
	if hasToken(n, "type") || hasToken(n, "namespace") {
		p.remove(n)
		return
	}
	decl := n.ChildByFieldName("declaration")
	if decl != nil && typeOnly[decl.Kind()] {
		p.remove(n)
		return
	}
	p.exports = true
	isDefault := hasToken(n, "default")

	if p.esm {
		switch {
		case decl != nil && decl.Kind() == "enum_declaration":
			p.enum(decl)
		case decl != nil:
			p.walk(decl)
		case n.ChildByFieldName("value") != nil:
			p.walk(n.ChildByFieldName("value"))
		}
		if list := childOfKind(n, "export_clause"); list != nil {
			p.stripTypeExports(list, "export_specifier")
		}
		return
	}

	switch {
	case decl != nil:
		p.replaceRange(n.StartByte(), decl.StartByte(), "")
		if decl.Kind() == "enum_declaration" {
			p.enum(decl)
		} else {
			p.walk(decl)
		}
		var assigns []string
		for _, name := range declaredNames(decl, p.src) {
			target := name
			if isDefault {
				target = "default"
			}
			assigns = append(assigns, fmt.Sprintf("exports.%s = %s;", target, name))
		}
		if len(assigns) > 0 {
			p.replaceRange(n.EndByte(), n.EndByte(), "\n"+strings.Join(assigns, " "))
		}
	case hasToken(n, "="):
		if value := n.NamedChild(0); value != nil {
			p.replaceRange(n.StartByte(), value.StartByte(), "module.exports = ")
			p.walk(value)
		}
	case n.ChildByFieldName("value") != nil:
		value := n.ChildByFieldName("value")
		p.replaceRange(n.StartByte(), value.StartByte(), "exports.default = ")
		p.walk(value)
	default:
		p.reexport(n)
	}
}

func (p *printer) reexport(n *ts.Node) {
	source := n.ChildByFieldName("source")
	list := childOfKind(n, "export_clause")

	if source == nil {
		if list == nil {
			return
		}
		var assigns []string
		for _, s := range p.specifiers(list, "export_specifier") {
			assigns = append(assigns, fmt.Sprintf("exports.%s = %s;", s[1], s[0]))
		}
		p.replace(n, strings.Join(assigns, " "))
		return
	}

	spec := p.text(source)
	switch {
	case list != nil:
		tmp := p.temp(stringValue(source, p.src))
		stmts := []string{fmt.Sprintf("var %s = require(%s);", tmp, spec)}
		for _, s := range p.specifiers(list, "export_specifier") {
			stmts = append(stmts, fmt.Sprintf("exports.%s = %s.%s;", s[1], tmp, s[0]))
		}
		p.replace(n, strings.Join(stmts, " "))
	case childOfKind(n, "namespace_export") != nil:
		ns := childOfKind(childOfKind(n, "namespace_export"), "identifier")
		if ns == nil {
			return
		}
		p.replace(n, fmt.Sprintf("exports.%s = require(%s);", p.text(ns), spec))
	default:
		p.replace(n, fmt.Sprintf("Object.assign(exports, require(%s));", spec))
	}
}

// declaredNames returns the bindings introduced by an exported declaration.
func declaredNames(decl *ts.Node, src []byte) []string {
	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
		var out []string
		for i := range decl.NamedChildCount() {
			d := decl.NamedChild(i)
			if d.Kind() != "variable_declarator" {
				continue
			}
			if name := d.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				out = append(out, name.Utf8Text(src))
			}
		}
		return out
	default:
		if name := decl.ChildByFieldName("name"); name != nil {
			return []string{name.Utf8Text(src)}
		}
	}
	return nil
}

// enum lowers an enum declaration to the object-building closure form.
func (p *printer) enum(n *ts.Node) {
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return
	}
	name := p.text(nameNode)

	var sb strings.Builder
	fmt.Fprintf(&sb, "var %s;\n(function (%s) {\n", name, name)
	next, auto := 0.0, true
	for i := range body.NamedChildCount() {
		member := body.NamedChild(i)
		keyNode, valueNode := member, (*ts.Node)(nil)
		if member.Kind() == "enum_assignment" {
			keyNode = member.ChildByFieldName("name")
			valueNode = member.ChildByFieldName("value")
		}
		if keyNode == nil || member.Kind() == "comment" {
			continue
		}
		key := p.text(keyNode)
		if keyNode.Kind() == "string" {
			key = stringValue(keyNode, p.src)
		}

		switch {
		case valueNode == nil && auto:
			fmt.Fprintf(&sb, "    %s[%s[%s] = %s] = %s;\n", name, name, quote(key), formatNumber(next), quote(key))
			next++
		case valueNode != nil && valueNode.Kind() == "number":
			v, ok := parseNumber(p.text(valueNode))
			if !ok {
				auto = false
			}
			next = v + 1
			fmt.Fprintf(&sb, "    %s[%s[%s] = %s] = %s;\n", name, name, quote(key), p.text(valueNode), quote(key))
		case valueNode != nil && valueNode.Kind() == "string":
			auto = false
			fmt.Fprintf(&sb, "    %s[%s] = %s;\n", name, quote(key), p.text(valueNode))
		case valueNode != nil:
			auto = false
			fmt.Fprintf(&sb, "    %s[%s[%s] = %s] = %s;\n", name, name, quote(key), p.text(valueNode), quote(key))
		default:
			fmt.Fprintf(&sb, "    %s[%s[%s] = void 0] = %s;\n", name, name, quote(key), quote(key))
		}
	}
	fmt.Fprintf(&sb, "})(%s || (%s = {}));", name, name)
	p.replace(n, sb.String())
}
