package sparql

import (
	"context"
	"encoding/json"
)

// AskQueryString holds SPARQL ASK text that has passed grammar validation.
// The zero value is not meaningful; construct one with ParseAsk, or with
// NewAskUnchecked from sparqlgen output.
type AskQueryString struct {
	text string
}

// ParseAsk validates text as a SPARQL ASK query and returns its typed,
// normalized query string. Text that fails the grammar yields a
// *SyntaxError; text that parses as another query form yields a
// *KindMismatchError.
func ParseAsk(text string) (AskQueryString, error) {
	normalized, form, err := Classify(text)
	if err != nil {
		return AskQueryString{}, err
	}
	if form != FormAsk {
		return AskQueryString{}, &KindMismatchError{Expected: FormAsk, Provided: form}
	}
	return AskQueryString{text: normalized}, nil
}

// NewAskUnchecked wraps text without re-validating it. It exists for code
// emitted by sparqlgen, which classifies the text when the file is
// generated; calling it with text that is not a validated, normalized ASK
// query breaks the type's invariant and every downstream assumption.
func NewAskUnchecked(text string) AskQueryString {
	return AskQueryString{text: text}
}

// String returns the normalized query text.
func (q AskQueryString) String() string { return q.text }

// Form returns FormAsk.
func (q AskQueryString) Form() QueryForm { return FormAsk }

// AskQuery binds an ASK query string to an endpoint for one execution.
type AskQuery struct {
	endpoint *Endpoint
	query    AskQueryString
}

// Run executes the query and decodes the response. Cancellation and
// timeouts are governed entirely by ctx; there are no retries.
func (q *AskQuery) Run(ctx context.Context) (*AskResponse, error) {
	body, err := q.endpoint.do(ctx, q.query.text)
	if err != nil {
		return nil, err
	}
	var resp AskResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &resp, nil
}
