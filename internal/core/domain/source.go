package domain

import "slices"

// SiteID addresses a call site inside its SourceFile arena.
type SiteID int

// Range is a half-open byte range into a source text.
type Range struct {
	Start int
	End   int
}

// Empty reports whether r covers no bytes.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Contains reports whether o lies inside r.
func (r Range) Contains(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// ArgKind classifies a call argument.
type ArgKind uint8

const (
	// ArgRaw is an arbitrary expression kept as source text.
	ArgRaw ArgKind = iota
	// ArgString is a string literal; Value holds the decoded contents.
	ArgString
	// ArgNumber is a numeric literal.
	ArgNumber
	// ArgUndefined is the undefined value.
	ArgUndefined
)

// Arg is a single argument of a call site.
// Arguments parsed from source carry their Source range; synthesized ones do not.
type Arg struct {
	Kind   ArgKind
	Value  string
	Number float64
	Source Range
}

// StringArg returns a synthesized string literal argument.
func StringArg(s string) Arg {
	return Arg{Kind: ArgString, Value: s}
}

// NumberArg returns a synthesized numeric argument.
func NumberArg(n float64) Arg {
	return Arg{Kind: ArgNumber, Number: n}
}

// UndefinedArg returns a synthesized undefined argument.
func UndefinedArg() Arg {
	return Arg{Kind: ArgUndefined}
}

// FromSource reports whether the argument was parsed rather than synthesized.
func (a Arg) FromSource() bool {
	return !a.Source.Empty()
}

// CallSite is a `receiver.method(args...)` call expression found while parsing.
type CallSite struct {
	ID       SiteID
	Receiver string
	Method   string
	Args     []Arg

	// Binding is the variable, property or field the call result is assigned to.
	Binding string

	// Source covers the whole call expression, MethodSource the property name,
	// ArgsSource the parenthesized argument list.
	Source       Range
	MethodSource Range
	ArgsSource   Range

	parsedMethod string
	parsedArgs   []Arg
}

// Modified reports whether the site differs from its parsed state.
func (c *CallSite) Modified() bool {
	return c.Method != c.parsedMethod || !c.ArgsUnchanged()
}

// ArgsUnchanged reports whether the argument list equals its parsed state.
func (c *CallSite) ArgsUnchanged() bool {
	return slices.Equal(c.Args, c.parsedArgs)
}

// Import is a module specifier referenced by an import or re-export statement.
type Import struct {
	Specifier string
	Line      int
	// Namespace is the local name bound by `import * as x` or `import x = require(...)`.
	Namespace string
	TypeOnly  bool
}

// SourceFile is a parsed source text. Call sites live in an arena and are
// addressed by SiteID, so edits never invalidate references held by analysis results.
type SourceFile struct {
	Path        string
	Text        []byte
	Sites       []CallSite
	Imports     []Import
	Diagnostics []Diagnostic
}

// AddSite appends a call site to the arena, records its parsed state and returns its ID.
func (f *SourceFile) AddSite(site CallSite) SiteID {
	site.ID = SiteID(len(f.Sites))
	site.parsedMethod = site.Method
	site.parsedArgs = slices.Clone(site.Args)
	f.Sites = append(f.Sites, site)
	return site.ID
}

// Site returns the call site with the given ID, or nil if it is out of range.
func (f *SourceFile) Site(id SiteID) *CallSite {
	if id < 0 || int(id) >= len(f.Sites) {
		return nil
	}
	return &f.Sites[id]
}

// Modified reports whether any call site differs from its parsed state.
func (f *SourceFile) Modified() bool {
	for i := range f.Sites {
		if f.Sites[i].Modified() {
			return true
		}
	}
	return false
}

// DeclarationOnly reports whether the file is a .d.ts declaration file.
func (f *SourceFile) DeclarationOnly() bool {
	return IsDeclarationFile(f.Path)
}
