package sparql

import (
	"context"
	"encoding/json"
)

// SelectQueryString holds SPARQL SELECT text that has passed grammar
// validation. The zero value is not meaningful; construct one with
// ParseSelect, or with NewSelectUnchecked from sparqlgen output.
type SelectQueryString struct {
	text string
}

// ParseSelect validates text as a SPARQL SELECT query and returns its typed,
// normalized query string. Text that fails the grammar yields a
// *SyntaxError; text that parses as another query form yields a
// *KindMismatchError.
func ParseSelect(text string) (SelectQueryString, error) {
	normalized, form, err := Classify(text)
	if err != nil {
		return SelectQueryString{}, err
	}
	if form != FormSelect {
		return SelectQueryString{}, &KindMismatchError{Expected: FormSelect, Provided: form}
	}
	return SelectQueryString{text: normalized}, nil
}

// NewSelectUnchecked wraps text without re-validating it. It exists for code
// emitted by sparqlgen, which classifies the text when the file is
// generated; calling it with text that is not a validated, normalized SELECT
// query breaks the type's invariant and every downstream assumption.
func NewSelectUnchecked(text string) SelectQueryString {
	return SelectQueryString{text: text}
}

// String returns the normalized query text.
func (q SelectQueryString) String() string { return q.text }

// Form returns FormSelect.
func (q SelectQueryString) Form() QueryForm { return FormSelect }

// SelectQuery binds a SELECT query string to an endpoint for one execution.
type SelectQuery struct {
	endpoint *Endpoint
	query    SelectQueryString
}

// Run executes the query and decodes the response. Cancellation and
// timeouts are governed entirely by ctx; there are no retries.
func (q *SelectQuery) Run(ctx context.Context) (*SelectResponse, error) {
	body, err := q.endpoint.do(ctx, q.query.text)
	if err != nil {
		return nil, err
	}
	var resp SelectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &resp, nil
}
