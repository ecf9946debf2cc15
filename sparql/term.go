package sparql

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TermKind discriminates the shape of an RDF term.
type TermKind int

// The RDF term shapes of the SPARQL 1.1 JSON Results format.
const (
	TermIRI TermKind = iota + 1
	TermBlankNode
	TermLiteral
	TermLangLiteral
	TermTypedLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "uri"
	case TermBlankNode:
		return "bnode"
	case TermLiteral, TermLangLiteral, TermTypedLiteral:
		return "literal"
	}
	return "unknown"
}

// Term is one RDF term bound to a variable in a result row. Value always
// holds the lexical form; Kind determines how to read it. A literal carries
// either a language tag or a datatype IRI, never both.
type Term struct {
	Kind  TermKind
	Value string

	lang     string
	datatype string
}

// NewIRI returns an IRI term.
func NewIRI(value string) Term {
	return Term{Kind: TermIRI, Value: value}
}

// NewBlankNode returns a blank node term with the given label.
func NewBlankNode(label string) Term {
	return Term{Kind: TermBlankNode, Value: label}
}

// NewLiteral returns a simple literal term.
func NewLiteral(value string) Term {
	return Term{Kind: TermLiteral, Value: value}
}

// NewLangLiteral returns a language-tagged literal term.
func NewLangLiteral(value, lang string) Term {
	return Term{Kind: TermLangLiteral, Value: value, lang: lang}
}

// NewTypedLiteral returns a literal term tagged with a datatype IRI.
func NewTypedLiteral(value, datatype string) Term {
	return Term{Kind: TermTypedLiteral, Value: value, datatype: datatype}
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool { return t.Kind == TermIRI }

// IsBlankNode reports whether the term is a blank node.
func (t Term) IsBlankNode() bool { return t.Kind == TermBlankNode }

// IsLiteral reports whether the term is a literal of any sub-kind.
func (t Term) IsLiteral() bool {
	return t.Kind == TermLiteral || t.Kind == TermLangLiteral || t.Kind == TermTypedLiteral
}

// Lang returns the language tag of a language-tagged literal.
func (t Term) Lang() (string, bool) {
	if t.Kind == TermLangLiteral {
		return t.lang, true
	}
	return "", false
}

// Datatype returns the datatype IRI of a datatype-tagged literal.
func (t Term) Datatype() (string, bool) {
	if t.Kind == TermTypedLiteral {
		return t.datatype, true
	}
	return "", false
}

// String renders the term in Turtle-like notation.
func (t Term) String() string {
	switch t.Kind {
	case TermIRI:
		return fmt.Sprintf("<%s>", t.Value)
	case TermBlankNode:
		return fmt.Sprintf("_:%s", t.Value)
	case TermLangLiteral:
		return fmt.Sprintf("%q@%s", t.Value, t.lang)
	case TermTypedLiteral:
		return fmt.Sprintf("%q^^<%s>", t.Value, t.datatype)
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}

// termJSON mirrors one binding value on the wire.
type termJSON struct {
	Type     *string `json:"type"`
	Value    *string `json:"value"`
	Lang     *string `json:"xml:lang,omitempty"`
	Datatype *string `json:"datatype,omitempty"`
}

// UnmarshalJSON decodes one SPARQL 1.1 JSON Results binding value. Decoding
// is total over the format: every well-formed binding maps to exactly one
// term kind, and anything else is an error rather than a default.
func (t *Term) UnmarshalJSON(data []byte) error {
	var raw termJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type == nil {
		return errors.New(`binding is missing "type"`)
	}
	if raw.Value == nil {
		return errors.New(`binding is missing "value"`)
	}
	switch *raw.Type {
	case "uri":
		*t = NewIRI(*raw.Value)
	case "bnode":
		*t = NewBlankNode(*raw.Value)
	case "literal":
		switch {
		case raw.Lang != nil && raw.Datatype != nil:
			return errors.New(`literal binding has both "xml:lang" and "datatype"`)
		case raw.Lang != nil:
			*t = NewLangLiteral(*raw.Value, *raw.Lang)
		case raw.Datatype != nil:
			*t = NewTypedLiteral(*raw.Value, *raw.Datatype)
		default:
			*t = NewLiteral(*raw.Value)
		}
	default:
		return fmt.Errorf("unknown binding type %q", *raw.Type)
	}
	return nil
}

// MarshalJSON encodes the term back into the JSON Results binding shape.
func (t Term) MarshalJSON() ([]byte, error) {
	typ := t.Kind.String()
	raw := termJSON{Type: &typ, Value: &t.Value}
	switch t.Kind {
	case TermLangLiteral:
		raw.Lang = &t.lang
	case TermTypedLiteral:
		raw.Datatype = &t.datatype
	case TermIRI, TermBlankNode, TermLiteral:
	default:
		return nil, fmt.Errorf("cannot encode term of unknown kind %d", t.Kind)
	}
	return json.Marshal(raw)
}
