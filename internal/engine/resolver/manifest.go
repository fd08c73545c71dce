package resolver

import (
	"encoding/json"
	"strings"
)

// Manifest is the subset of package.json used to locate a package entry point.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main,omitempty"`
	Types   string `json:"types,omitempty"`
	Typings string `json:"typings,omitempty"`
}

// ParseManifest parses package.json data.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Entry returns the declared main file, or fallback when none is declared.
func (m *Manifest) Entry(fallback string) string {
	main := strings.TrimSpace(m.Main)
	if main == "" {
		return fallback
	}
	return main
}

// trimScriptExt strips the extension of an entry point so it can be retried as a source file.
func trimScriptExt(name string) string {
	for _, ext := range []string{".js", ".mjs", ".cjs", ".ts"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
