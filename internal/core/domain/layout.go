package domain

import "strings"

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "bb.yaml"

	// DefaultOutDir is the output directory used when none is configured.
	DefaultOutDir = "dist"

	// SpriteAtlasName is the output name of the packed sprite atlas.
	SpriteAtlasName = "bundle.png"

	// DefaultBundleName is the output name of the total bundle.
	DefaultBundleName = "bundle.js"

	// TranslationsName is the output name of the message catalog.
	TranslationsName = "translations.json"

	// PackageManifest is the name of a package description file.
	PackageManifest = "package.json"

	// NodeModulesDir is the name of the package installation directory.
	NodeModulesDir = "node_modules"

	// DefaultPackageMain is the entry file of a package without a main field.
	DefaultPackageMain = "index.js"

	// BobrilModule is the specifier of the framework whose helpers are rewritten.
	BobrilModule = "bobril"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Source and output file extensions.
const (
	ExtTS   = ".ts"
	ExtDTS  = ".d.ts"
	ExtJS   = ".js"
	ExtTSX  = ".tsx"
	ExtDTSX = ".d.tsx"
)

// IsDeclarationFile reports whether name is a .d.ts file.
func IsDeclarationFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ExtDTS)
}

// TrimSourceExt strips a .d.ts, .ts or .tsx extension.
func TrimSourceExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{ExtDTS, ExtDTSX, ExtTS, ExtTSX} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// OutputName returns the JavaScript output name of a source file.
func OutputName(source string) string {
	return TrimSourceExt(source) + ExtJS
}
