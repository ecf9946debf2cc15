package sparql

import (
	"errors"
	"fmt"

	"github.com/kauzarc/sparql-http-client/internal/grammar"
)

// QueryForm identifies the top-level form of a SPARQL query.
type QueryForm int

// The query forms of the SPARQL 1.1 query grammar. Only SELECT and ASK have
// typed query strings; CONSTRUCT and DESCRIBE classify but cannot be
// executed by this client.
const (
	FormSelect QueryForm = iota + 1
	FormConstruct
	FormDescribe
	FormAsk
)

func (f QueryForm) String() string {
	switch f {
	case FormSelect:
		return "SELECT"
	case FormConstruct:
		return "CONSTRUCT"
	case FormDescribe:
		return "DESCRIBE"
	case FormAsk:
		return "ASK"
	}
	return "UNKNOWN"
}

// QueryString is implemented by the typed, grammar-validated query string
// kinds. The wrapped text is normalized and immutable.
type QueryString interface {
	fmt.Stringer
	Form() QueryForm
}

// Classify validates text as a SPARQL query and returns its normalized form
// and query form. Most callers want ParseSelect or ParseAsk instead; this is
// for code that dispatches on the form of a dynamic query.
func Classify(text string) (string, QueryForm, error) {
	normalized, form, err := grammar.Classify(text)
	if err != nil {
		var serr *grammar.SyntaxError
		if errors.As(err, &serr) {
			return "", 0, &SyntaxError{Message: serr.Msg, Line: serr.Line, Col: serr.Col}
		}
		return "", 0, err
	}
	return normalized, formOf(form), nil
}

// formOf maps the grammar's closed form enumeration onto the public one.
func formOf(f grammar.Form) QueryForm {
	switch f {
	case grammar.FormSelect:
		return FormSelect
	case grammar.FormConstruct:
		return FormConstruct
	case grammar.FormDescribe:
		return FormDescribe
	case grammar.FormAsk:
		return FormAsk
	}
	panic(fmt.Sprintf("sparql: grammar produced unknown query form %d", f))
}
