package ports

import "context"

// BundleModule is one emitted module handed to a Bundler.
type BundleModule struct {
	// Name is the module name used by require.
	Name string
	Code []byte
	// Requires maps each specifier the module requires to the name of the module it resolves to.
	Requires map[string]string
}

// Bundler concatenates modules into a single script.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Bundle joins modules, given dependencies first, and starts main.
	Bundle(ctx context.Context, main string, modules []BundleModule) ([]byte, error)
}
