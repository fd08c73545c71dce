package treesitter

import (
	"embed"
	"path"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"go.trai.ch/zerr"
)

//go:embed queries/*.scm
var queryFiles embed.FS

var typescript = ts.NewLanguage(tsTypescript.LanguageTypescript())

var parserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(typescript); err != nil {
			panic("failed to set TypeScript language: " + err.Error())
		}
		return parser
	},
}

func getParser() *ts.Parser {
	return parserPool.Get().(*ts.Parser)
}

func putParser(p *ts.Parser) {
	p.Reset()
	parserPool.Put(p)
}

// parse returns the syntax tree of text. The caller must close it.
func parse(text []byte) *ts.Tree {
	parser := getParser()
	defer putParser(parser)
	return parser.Parse(text, nil)
}

func loadQuery(name string) (*ts.Query, error) {
	queryPath := path.Join("queries", name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read query"), "query", queryPath)
	}
	query, qerr := ts.NewQuery(typescript, string(data))
	if qerr != nil {
		return nil, zerr.With(zerr.Wrap(qerr, "failed to compile query"), "query", queryPath)
	}
	return query, nil
}
