package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleNotResolved is returned when an import specifier cannot be mapped to a file.
	ErrModuleNotResolved = zerr.New("module not resolved")

	// ErrManifestReadFailed is returned when a package.json file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read package manifest")

	// ErrManifestParseFailed is returned when a package.json file is not valid JSON.
	ErrManifestParseFailed = zerr.New("failed to parse package manifest")

	// ErrTotalBundleRequiresCommonJS is returned when total bundling is requested with a
	// module kind other than commonjs.
	ErrTotalBundleRequiresCommonJS = zerr.New("total bundle requires commonjs module kind")

	// ErrNoEntryModules is returned when a project declares no entry modules.
	ErrNoEntryModules = zerr.New("no entry modules specified")

	// ErrEntryNotFound is returned when an entry module does not exist on disk.
	ErrEntryNotFound = zerr.New("entry module not found")

	// ErrSpriteNotPacked is returned when a sprite is queried that is not part of the packed atlas.
	ErrSpriteNotPacked = zerr.New("sprite not present in atlas")

	// ErrSpriteLoadFailed is returned when a sprite image cannot be read or decoded.
	ErrSpriteLoadFailed = zerr.New("failed to load sprite image")

	// ErrAtlasBuildFailed is returned when the sprite atlas cannot be packed or encoded.
	ErrAtlasBuildFailed = zerr.New("failed to build sprite atlas")

	// ErrEmitFailed is returned when a source file cannot be printed to JavaScript.
	ErrEmitFailed = zerr.New("failed to emit module")

	// ErrBundleFailed is returned when the total bundle cannot be produced.
	ErrBundleFailed = zerr.New("failed to produce bundle")

	// ErrWriteFailed is returned when an output file cannot be written.
	ErrWriteFailed = zerr.New("failed to write output file")

	// ErrParseFailed is returned when the parser cannot produce a tree for a source file.
	ErrParseFailed = zerr.New("failed to parse source file")

	// ErrConfigNotFound is returned when no project file is found.
	ErrConfigNotFound = zerr.New("could not find bb.yaml")

	// ErrConfigReadFailed is returned when the project file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the project file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidStyleDefs is returned when the styleDefs mode is not one of debug, release or none.
	ErrInvalidStyleDefs = zerr.New("invalid styleDefs mode, expected 'debug', 'release' or 'none'")

	// ErrInvalidModuleKind is returned when the module kind is not supported.
	ErrInvalidModuleKind = zerr.New("invalid module kind, expected 'commonjs', 'es2015', 'amd' or 'umd'")

	// ErrEntryGlobFailed is returned when an entry glob pattern is malformed.
	ErrEntryGlobFailed = zerr.New("failed to expand entry pattern")

	// ErrCatalogParseFailed is returned when a stored message catalog is not valid JSON.
	ErrCatalogParseFailed = zerr.New("failed to parse message catalog")

	// ErrDuplicateMessageID is returned when a stored message catalog gives one id to two messages.
	ErrDuplicateMessageID = zerr.New("message id used twice")

	// ErrBuildFailed is returned when a compile pass aborts.
	ErrBuildFailed = zerr.New("build failed")

	// ErrFilesFailed marks a completed pass in which some files failed to emit.
	// They were already reported as diagnostics.
	ErrFilesFailed = zerr.New("some files failed to compile")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to start watcher")
)
