package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeQuery(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeQuery(t, dir, "find_objects.rq", "SELECT ?obj WHERE {\n\t?sub ?pred ?obj .\n} LIMIT 3\n")
	writeQuery(t, dir, "has_triple.rq", "ask { <urn:a> <urn:b> <urn:c> }")

	src, err := generate(dir, "queries")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := string(src)

	for _, want := range []string{
		"// Code generated by sparqlgen. DO NOT EDIT.",
		"package queries",
		`import "github.com/kauzarc/sparql-http-client/sparql"`,
		`var FindObjects = sparql.NewSelectUnchecked("SELECT ?obj WHERE { ?sub ?pred ?obj . } LIMIT 3")`,
		`var HasTriple = sparql.NewAskUnchecked("ASK { <urn:a> <urn:b> <urn:c> }")`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("generated source missing %q:\n%s", want, got)
		}
	}
}

func TestGenerateSyntaxErrorPosition(t *testing.T) {
	dir := t.TempDir()
	writeQuery(t, dir, "broken.rq", "SELECT ?s WHERE {\n  ?s ?p\n}\n")

	_, err := generate(dir, "queries")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "broken.rq:3:1") {
		t.Errorf("expected file position in diagnostic, got %q", err)
	}
}

func TestGenerateRejectsUnsupportedForm(t *testing.T) {
	dir := t.TempDir()
	writeQuery(t, dir, "graph.rq", "CONSTRUCT { ?s <urn:p> ?o } WHERE { ?s ?p ?o }")

	_, err := generate(dir, "queries")
	if err == nil || !strings.Contains(err.Error(), "unsupported query form CONSTRUCT") {
		t.Errorf("expected unsupported-form error, got %v", err)
	}
}

func TestGenerateRejectsNameCollision(t *testing.T) {
	dir := t.TempDir()
	writeQuery(t, dir, "find_city.rq", "ASK { ?s ?p ?o }")
	writeQuery(t, dir, "find-city.rq", "ASK { ?s ?p ?o }")

	_, err := generate(dir, "queries")
	if err == nil || !strings.Contains(err.Error(), "collides") {
		t.Errorf("expected collision error, got %v", err)
	}
}

func TestGenerateAgreesWithRuntimeParse(t *testing.T) {
	// The generator and the runtime path reject the same texts with the
	// same classifier diagnostic.
	dir := t.TempDir()
	writeQuery(t, dir, "broken.rq", "SELEKT ?s WHERE { ?s ?p ?o }")

	_, err := generate(dir, "queries")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "expected SELECT, CONSTRUCT, DESCRIBE or ASK") {
		t.Errorf("expected the classifier diagnostic, got %q", err)
	}
}

func TestExportName(t *testing.T) {
	cases := map[string]string{
		"find_city.rq":    "FindCity",
		"has-triple.rq":   "HasTriple",
		"objects.rq":      "Objects",
		"all.the.rest.rq": "AllTheRest",
	}
	for file, want := range cases {
		got, err := exportName(file)
		if err != nil {
			t.Errorf("exportName(%q): %v", file, err)
			continue
		}
		if got != want {
			t.Errorf("exportName(%q) = %q, want %q", file, got, want)
		}
	}
	if _, err := exportName("123.rq"); err == nil {
		t.Error("expected error for a file name with no letters")
	}
}
