package sparql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testAgent = UserAgent{
	Name:    "clienttest",
	Version: "1.0",
	Contact: "https://example.org/contact",
}

func TestRunAsk(t *testing.T) {
	var gotMethod, gotQuery, gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotQuery = r.PostFormValue("query")
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{"head":{},"boolean":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	qs, err := ParseAsk(`ASK { <urn:a> <urn:b> <urn:c> }`)
	if err != nil {
		t.Fatalf("ParseAsk: %v", err)
	}

	client := NewClient(testAgent)
	resp, err := client.Endpoint(srv.URL).Ask(qs).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !resp.Bool() {
		t.Error("expected true")
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotQuery != `ASK { <urn:a> <urn:b> <urn:c> }` {
		t.Errorf("unexpected query field %q", gotQuery)
	}
	if !strings.HasPrefix(gotUA, "clienttest/1.0 (https://example.org/contact)") {
		t.Errorf("unexpected User-Agent %q", gotUA)
	}
	if gotAccept != "application/sparql-results+json" {
		t.Errorf("unexpected Accept %q", gotAccept)
	}
}

func TestRunSelect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{
			"head": {"vars": ["s", "p", "o"]},
			"results": {"bindings": [{
				"s": {"type": "uri", "value": "urn:a"},
				"p": {"type": "uri", "value": "urn:b"},
				"o": {"type": "uri", "value": "urn:c"}
			}]}
		}`)) //nolint:errcheck
	}))
	defer srv.Close()

	qs, err := ParseSelect(`SELECT ?s ?p ?o WHERE { ?s ?p ?o }`)
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}

	client := NewClient(testAgent)
	resp, err := client.Endpoint(srv.URL).Select(qs).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(resp.Results.Bindings) != 1 {
		t.Fatalf("expected one row, got %d", len(resp.Results.Bindings))
	}
	term, ok := resp.Results.Bindings[0].Get("s")
	if !ok {
		t.Fatal("expected s to be bound")
	}
	if !term.IsIRI() || term.Value != "urn:a" {
		t.Errorf("unexpected term %s", term)
	}
}

func TestRunStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "query engine exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	qs, err := ParseAsk(`ASK { ?s ?p ?o }`)
	if err != nil {
		t.Fatalf("ParseAsk: %v", err)
	}

	client := NewClient(testAgent)
	_, err = client.Endpoint(srv.URL).Ask(qs).Run(context.Background())
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if serr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", serr.StatusCode)
	}
	if !strings.Contains(string(serr.Body), "query engine exploded") {
		t.Errorf("expected error body to be carried, got %q", serr.Body)
	}
}

func TestRunDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"head":{},"boolean":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	qs, err := ParseSelect(`SELECT ?s WHERE { ?s ?p ?o }`)
	if err != nil {
		t.Fatalf("ParseSelect: %v", err)
	}

	client := NewClient(testAgent)
	_, err = client.Endpoint(srv.URL).Select(qs).Run(context.Background())
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
}

func TestRunContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	qs, err := ParseAsk(`ASK { ?s ?p ?o }`)
	if err != nil {
		t.Fatalf("ParseAsk: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testAgent)
	if _, err := client.Endpoint(srv.URL).Ask(qs).Run(ctx); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestEndpointSharedAcrossGoroutines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"head":{},"boolean":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	qs, err := ParseAsk(`ASK { ?s ?p ?o }`)
	if err != nil {
		t.Fatalf("ParseAsk: %v", err)
	}

	client := NewClient(testAgent, WithRateLimit(100, 10))
	endpoint := client.Endpoint(srv.URL)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := endpoint.Ask(qs).Run(context.Background())
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent Run: %v", err)
		}
	}
}
