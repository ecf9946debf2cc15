package sparql

import (
	"encoding/json"
	"errors"
)

// Binding maps a variable name to the term bound in one solution. A missing
// entry means the variable is unbound in that row.
type Binding map[string]Term

// Get returns the term bound to the named variable, reporting whether the
// variable is bound in this row.
func (b Binding) Get(name string) (Term, bool) {
	t, ok := b[name]
	return t, ok
}

// Head lists the selected variables in the order the endpoint declared
// them, plus any metadata links.
type Head struct {
	Vars []string `json:"vars"`
	Link []string `json:"link,omitempty"`
}

// Results holds the solution rows in the order they were received. The
// client never sorts or deduplicates them.
type Results struct {
	Bindings []Binding `json:"bindings"`
}

// SelectResponse is the decoded result of a SELECT query.
type SelectResponse struct {
	Head    Head    `json:"head"`
	Results Results `json:"results"`
}

// UnmarshalJSON enforces the SELECT shape of the JSON Results format: both
// "head" and "results" must be present.
func (r *SelectResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Head    *Head    `json:"head"`
		Results *Results `json:"results"`
		Boolean *bool    `json:"boolean"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Head == nil {
		return errors.New(`SELECT results are missing "head"`)
	}
	if raw.Results == nil {
		if raw.Boolean != nil {
			return errors.New("got a boolean ASK result for a SELECT query")
		}
		return errors.New(`SELECT results are missing "results"`)
	}
	r.Head = *raw.Head
	r.Results = *raw.Results
	return nil
}

// AskHead carries the optional metadata links of an ASK result.
type AskHead struct {
	Link []string `json:"link,omitempty"`
}

// AskResponse is the decoded result of an ASK query.
type AskResponse struct {
	Head    AskHead `json:"head"`
	Boolean bool    `json:"boolean"`
}

// UnmarshalJSON enforces the ASK shape of the JSON Results format:
// "boolean" must be present. Some endpoints omit "head", so it is optional.
func (r *AskResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Head    *AskHead `json:"head"`
		Boolean *bool    `json:"boolean"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Boolean == nil {
		return errors.New(`ASK results are missing "boolean"`)
	}
	if raw.Head != nil {
		r.Head = *raw.Head
	}
	r.Boolean = *raw.Boolean
	return nil
}

// Bool returns the ASK verdict.
func (r *AskResponse) Bool() bool { return r.Boolean }
