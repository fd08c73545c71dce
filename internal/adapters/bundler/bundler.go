// Package bundler concatenates CommonJS modules into one self-starting script.
package bundler

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"

	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
)

// prelude defines the module table and a require that maps specifiers
// through the requiring module's table.
const prelude = `(function () {
var modules = {};
var cache = {};
function define(name, requires, factory) {
    modules[name] = { requires: requires, factory: factory };
}
function load(name) {
    var hit = cache[name];
    if (hit) return hit.exports;
    var m = modules[name];
    if (!m) throw new Error("Cannot find module '" + name + "'");
    var module = cache[name] = { exports: {} };
    m.factory(function (s) {
        var target = m.requires[s];
        return load(target === undefined ? s : target);
    }, module, module.exports);
    return module.exports;
}
`

// CommonJS implements ports.Bundler.
type CommonJS struct{}

// New creates a CommonJS bundler.
func New() *CommonJS {
	return &CommonJS{}
}

// Bundle writes modules in the given order and loads main at the end.
func (CommonJS) Bundle(ctx context.Context, main string, modules []ports.BundleModule) ([]byte, error) {
	if !slices.ContainsFunc(modules, func(m ports.BundleModule) bool { return m.Name == main }) {
		return nil, zerr.With(zerr.New("main module is not part of the bundle"), "module", main)
	}

	var buf bytes.Buffer
	buf.WriteString(prelude)
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeModule(&buf, m); err != nil {
			return nil, zerr.With(err, "module", m.Name)
		}
	}
	name, err := json.Marshal(main)
	if err != nil {
		return nil, err
	}
	buf.WriteString("load(")
	buf.Write(name)
	buf.WriteString(");\n})();\n")
	return buf.Bytes(), nil
}

func writeModule(buf *bytes.Buffer, m ports.BundleModule) error {
	name, err := json.Marshal(m.Name)
	if err != nil {
		return err
	}
	requires := m.Requires
	if requires == nil {
		requires = map[string]string{}
	}
	table, err := json.Marshal(requires)
	if err != nil {
		return err
	}

	buf.WriteString("define(")
	buf.Write(name)
	buf.WriteString(", ")
	buf.Write(table)
	buf.WriteString(", function (require, module, exports) {\n")
	buf.Write(m.Code)
	if len(m.Code) > 0 && m.Code[len(m.Code)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("});\n")
	return nil
}
