package ports

import "go.trai.ch/bb/internal/core/domain"

// EmitOptions configures JavaScript emission.
type EmitOptions struct {
	Target     string
	ModuleKind domain.ModuleKind
}

// Compiler parses TypeScript sources, extracts helper call sites and prints JavaScript.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Parse builds the call site arena of a source text.
	Parse(path string, text []byte) (*domain.SourceFile, error)
	// Analyze extracts imports and framework helper sites from a parsed file.
	// Dependencies are returned unresolved.
	Analyze(file *domain.SourceFile) (*domain.SourceInfo, error)
	// Emit prints the file in its current, possibly edited, state.
	Emit(file *domain.SourceFile, opts EmitOptions) ([]byte, error)
}
