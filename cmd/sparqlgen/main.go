// Command sparqlgen pre-expands SPARQL query files into typed query string
// declarations. Each query is classified with the same grammar the runtime
// ParseSelect/ParseAsk use, so a malformed or unsupported query fails the
// generation step (and with it the build) instead of a request at run time,
// and the generated variable's static type already encodes the query's form.
//
// It is meant to be driven by a go:generate directive:
//
//	//go:generate go run github.com/kauzarc/sparql-http-client/cmd/sparqlgen -dir . -pkg queries -out queries_gen.go
//
// Every *.rq file in the directory becomes one exported variable named after
// the file, e.g. find_city.rq becomes:
//
//	var FindCity = sparql.NewSelectUnchecked("SELECT ...")
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kauzarc/sparql-http-client/internal/grammar"
)

func main() {
	dir := flag.String("dir", ".", "directory containing .rq query files")
	pkg := flag.String("pkg", "queries", "package name for the generated file")
	out := flag.String("out", "queries_gen.go", "output file path")
	flag.Parse()

	if err := run(*dir, *pkg, *out); err != nil {
		fmt.Fprintln(os.Stderr, "sparqlgen:", err)
		os.Exit(1)
	}
}

func run(dir, pkg, out string) error {
	src, err := generate(dir, pkg)
	if err != nil {
		return err
	}
	return os.WriteFile(out, src, 0o644)
}

type queryDecl struct {
	name string // exported Go identifier
	file string // base file name, for the doc comment
	ctor string // kind-matched trusted constructor
	text string // normalized query text
}

func generate(dir, pkg string) ([]byte, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.rq"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .rq files in %s", dir)
	}

	decls := make([]queryDecl, 0, len(matches))
	seen := make(map[string]string, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		decl, err := classifyFile(path, string(data))
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[decl.name]; dup {
			return nil, fmt.Errorf("%s: variable name %s collides with %s", path, decl.name, prev)
		}
		seen[decl.name] = path
		decls = append(decls, decl)
	}

	return render(pkg, decls)
}

// classifyFile validates one query file; a syntax error is reported at the
// file's own line and column.
func classifyFile(path, text string) (queryDecl, error) {
	normalized, form, err := grammar.Classify(text)
	if err != nil {
		var serr *grammar.SyntaxError
		if errors.As(err, &serr) {
			return queryDecl{}, fmt.Errorf("%s:%d:%d: %s", path, serr.Line, serr.Col, serr.Msg)
		}
		return queryDecl{}, fmt.Errorf("%s: %w", path, err)
	}

	var ctor string
	switch form {
	case grammar.FormSelect:
		ctor = "sparql.NewSelectUnchecked"
	case grammar.FormAsk:
		ctor = "sparql.NewAskUnchecked"
	default:
		return queryDecl{}, fmt.Errorf("%s: unsupported query form %s (only SELECT and ASK queries can be executed)", path, form)
	}

	base := filepath.Base(path)
	name, err := exportName(base)
	if err != nil {
		return queryDecl{}, fmt.Errorf("%s: %w", path, err)
	}
	return queryDecl{name: name, file: base, ctor: ctor, text: normalized}, nil
}

func render(pkg string, decls []queryDecl) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by sparqlgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "import %q\n\n", "github.com/kauzarc/sparql-http-client/sparql")
	for _, d := range decls {
		fmt.Fprintf(&buf, "// %s is the query from %s, validated when this file was generated.\n", d.name, d.file)
		fmt.Fprintf(&buf, "var %s = %s(%s)\n\n", d.name, d.ctor, strconv.Quote(d.text))
	}
	return format.Source(buf.Bytes())
}

// exportName derives an exported Go identifier from a query file name:
// find_city.rq becomes FindCity.
func exportName(file string) (string, error) {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	name := b.String()
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		return "", fmt.Errorf("cannot derive an exported identifier from file name %q", file)
	}
	return name, nil
}
