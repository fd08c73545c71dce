package config

// Projectfile represents the structure of the bb.yaml configuration file.
type Projectfile struct {
	Version string `yaml:"version"`
	// Dir is the project root, relative to the file. Defaults to the file's directory.
	Dir     string   `yaml:"dir"`
	Main    string   `yaml:"main"`
	Entries []string `yaml:"entries"`
	OutDir  string   `yaml:"outDir"`

	CompilerOptions CompilerOptionsDTO `yaml:"compilerOptions"`

	StyleDefs    string `yaml:"styleDefs"`
	SpriteMerge  bool   `yaml:"spriteMerge"`
	RemapImages  string `yaml:"remapImages"`
	Translations bool   `yaml:"translations"`
	TotalBundle  bool   `yaml:"totalBundle"`
	BundleName   string `yaml:"bundleName"`
}

// CompilerOptionsDTO holds the emit settings.
type CompilerOptionsDTO struct {
	Target string `yaml:"target"`
	Module string `yaml:"module"`
}
