package sparql

import (
	"encoding/json"
	"testing"
)

func TestTermDecodeIRI(t *testing.T) {
	var term Term
	if err := json.Unmarshal([]byte(`{"type":"uri","value":"http://x"}`), &term); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !term.IsIRI() {
		t.Error("expected an IRI term")
	}
	if term.Value != "http://x" {
		t.Errorf("expected value http://x, got %s", term.Value)
	}
	if _, ok := term.Lang(); ok {
		t.Error("IRI should have no language tag")
	}
}

func TestTermDecodeBlankNode(t *testing.T) {
	var term Term
	if err := json.Unmarshal([]byte(`{"type":"bnode","value":"b0"}`), &term); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !term.IsBlankNode() {
		t.Error("expected a blank node term")
	}
	if term.String() != "_:b0" {
		t.Errorf("expected _:b0, got %s", term.String())
	}
}

func TestTermDecodeLangLiteral(t *testing.T) {
	var term Term
	if err := json.Unmarshal([]byte(`{"type":"literal","value":"Paris","xml:lang":"en"}`), &term); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !term.IsLiteral() {
		t.Error("expected a literal term")
	}
	lang, ok := term.Lang()
	if !ok || lang != "en" {
		t.Errorf("expected lang en, got %q (ok=%v)", lang, ok)
	}
	if _, ok := term.Datatype(); ok {
		t.Error("language-tagged literal should have no datatype")
	}
}

func TestTermDecodeTypedLiteral(t *testing.T) {
	var term Term
	data := `{"type":"literal","value":"5","datatype":"http://www.w3.org/2001/XMLSchema#integer"}`
	if err := json.Unmarshal([]byte(data), &term); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	dt, ok := term.Datatype()
	if !ok || dt != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("expected xsd:integer datatype, got %q (ok=%v)", dt, ok)
	}
	if _, ok := term.Lang(); ok {
		t.Error("datatype-tagged literal should have no language tag")
	}
	if term.Value != "5" {
		t.Errorf("expected value 5, got %s", term.Value)
	}
}

func TestTermDecodeSimpleLiteral(t *testing.T) {
	var term Term
	if err := json.Unmarshal([]byte(`{"type":"literal","value":"1.0.0"}`), &term); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if term.Kind != TermLiteral {
		t.Errorf("expected a simple literal, got kind %v", term.Kind)
	}
}

func TestTermDecodeErrors(t *testing.T) {
	cases := []string{
		`{"value":"x"}`,                            // missing type
		`{"type":"uri"}`,                           // missing value
		`{"type":"triple","value":"x"}`,            // unknown type
		`{"type":"literal","value":"x","xml:lang":"en","datatype":"urn:d"}`, // conflicting tags
	}
	for _, c := range cases {
		var term Term
		if err := json.Unmarshal([]byte(c), &term); err == nil {
			t.Errorf("unmarshal(%s): expected error", c)
		}
	}
}

func TestTermRoundTrip(t *testing.T) {
	terms := []Term{
		NewIRI("http://example.org/a"),
		NewBlankNode("b1"),
		NewLiteral("plain"),
		NewLangLiteral("Paris", "en"),
		NewTypedLiteral("5", "http://www.w3.org/2001/XMLSchema#integer"),
	}
	for _, orig := range terms {
		data, err := json.Marshal(orig)
		if err != nil {
			t.Fatalf("marshal %s: %v", orig, err)
		}
		var back Term
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != orig {
			t.Errorf("round trip changed %s into %s", orig, back)
		}
	}
}
