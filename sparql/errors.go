package sparql

import "fmt"

// SyntaxError reports query text the grammar rejected, with the position of
// the offending token.
type SyntaxError struct {
	Message string
	Line    int
	Col     int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SPARQL syntax error at %d:%d: %s", e.Line, e.Col, e.Message)
}

// KindMismatchError reports text that is a valid SPARQL query of a different
// form than the target type expected.
type KindMismatchError struct {
	Expected QueryForm
	Provided QueryForm
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("expected %s query but got %s", e.Expected, e.Provided)
}

// StatusError is returned when the endpoint answers with a non-success
// status. The response body is carried for diagnosis; it is never decoded
// as a result.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned HTTP %d", e.StatusCode)
}

// DecodeError wraps a success response whose body did not conform to the
// SPARQL 1.1 JSON Results format expected for the query's form.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decoding SPARQL results: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }
