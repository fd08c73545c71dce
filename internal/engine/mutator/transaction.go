// Package mutator applies reversible edits to the call sites of a cached source file.
//
// Parsed files are shared across compile passes, so every edit made for one
// emission is recorded in an undo log and reverted before the file is used again.
package mutator

import (
	"fmt"
	"slices"

	"go.trai.ch/bb/internal/core/domain"
)

// Field names the part of a call site a Record restores.
type Field uint8

const (
	// FieldArgs restores the argument list.
	FieldArgs Field = iota
	// FieldMethod restores the method name.
	FieldMethod
)

func (f Field) String() string {
	if f == FieldMethod {
		return "method"
	}
	return "args"
}

// Record is one undo log entry: the value a field held before an edit.
type Record struct {
	Site   domain.SiteID
	Field  Field
	Method string
	Args   []domain.Arg
}

// Transaction collects edits to one SourceFile. It must be rolled back exactly once.
type Transaction struct {
	file *domain.SourceFile
	log  []Record
	done bool
}

// Begin opens a transaction on file.
func Begin(file *domain.SourceFile) *Transaction {
	return &Transaction{file: file}
}

// Do runs fn inside a transaction and rolls it back when fn returns or panics.
func Do(file *domain.SourceFile, fn func(tx *Transaction) error) error {
	tx := Begin(file)
	defer tx.Rollback()
	return fn(tx)
}

func (tx *Transaction) site(id domain.SiteID) *domain.CallSite {
	if tx.done {
		panic("mutator: edit after rollback")
	}
	site := tx.file.Site(id)
	if site == nil {
		panic(fmt.Sprintf("mutator: call site %d not in %s", id, tx.file.Path))
	}
	return site
}

func (tx *Transaction) rememberArgs(site *domain.CallSite) {
	tx.log = append(tx.log, Record{Site: site.ID, Field: FieldArgs, Args: slices.Clone(site.Args)})
}

// Remember records the full state of a call site before a group of edits.
func (tx *Transaction) Remember(id domain.SiteID) {
	site := tx.site(id)
	tx.log = append(tx.log, Record{Site: id, Field: FieldMethod, Method: site.Method})
	tx.rememberArgs(site)
}

// SetArgument replaces argument index, padding with undefined when the list is shorter.
func (tx *Transaction) SetArgument(id domain.SiteID, index int, value domain.Arg) {
	site := tx.site(id)
	tx.rememberArgs(site)
	args := slices.Clone(site.Args)
	for len(args) <= index {
		args = append(args, domain.UndefinedArg())
	}
	args[index] = value
	site.Args = args
}

// SetArgumentCount truncates the argument list to n, or pads it with undefined.
func (tx *Transaction) SetArgumentCount(id domain.SiteID, n int) {
	site := tx.site(id)
	if len(site.Args) == n {
		return
	}
	tx.rememberArgs(site)
	args := slices.Clone(site.Args)
	if len(args) > n {
		args = args[:n]
	}
	for len(args) < n {
		args = append(args, domain.UndefinedArg())
	}
	site.Args = args
}

// SetMethodName renames the called method.
func (tx *Transaction) SetMethodName(id domain.SiteID, name string) {
	site := tx.site(id)
	tx.log = append(tx.log, Record{Site: id, Field: FieldMethod, Method: site.Method})
	site.Method = name
}

// Len returns the number of undo records.
func (tx *Transaction) Len() int {
	return len(tx.log)
}

// Log returns a copy of the undo log, oldest first.
func (tx *Transaction) Log() []Record {
	return slices.Clone(tx.log)
}

// Rollback restores every edited site, newest edit first. Calling it twice is a no-op.
func (tx *Transaction) Rollback() {
	if tx.done {
		return
	}
	for i := len(tx.log) - 1; i >= 0; i-- {
		r := tx.log[i]
		site := tx.file.Site(r.Site)
		switch r.Field {
		case FieldMethod:
			site.Method = r.Method
		case FieldArgs:
			site.Args = r.Args
		}
	}
	tx.log = nil
	tx.done = true
}
