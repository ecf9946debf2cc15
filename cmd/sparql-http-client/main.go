// Command sparql-http-client runs a SPARQL SELECT or ASK query against an
// endpoint and prints the result: a table (SELECT) or verdict (ASK) on a
// terminal, JSON when piped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/kauzarc/sparql-http-client/internal/config"
	"github.com/kauzarc/sparql-http-client/internal/logging"
	"github.com/kauzarc/sparql-http-client/sparql"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	endpointURL := flag.String("endpoint", "", "endpoint URL (overrides config)")
	queryFile := flag.String("file", "", "read the query from a file")
	queryText := flag.String("query", "", "inline query text (default: read stdin)")
	flag.Parse()

	if err := run(*configPath, *endpointURL, *queryFile, *queryText); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, endpointURL, queryFile, queryText string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if endpointURL != "" {
		cfg.Endpoint.URL = endpointURL
	}

	logger, closer := logging.New(cfg.Logging)
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}

	text, err := readQuery(queryFile, queryText)
	if err != nil {
		return err
	}

	opts := []sparql.Option{sparql.WithLogger(logger)}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		opts = append(opts, sparql.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}
	client := sparql.NewClient(sparql.UserAgent{
		Name:    cfg.UserAgent.Name,
		Version: cfg.UserAgent.Version,
		Contact: cfg.UserAgent.Contact,
	}, opts...)
	endpoint := client.Endpoint(cfg.Endpoint.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, form, err := sparql.Classify(text)
	if err != nil {
		return err
	}

	switch form {
	case sparql.FormSelect:
		qs, err := sparql.ParseSelect(text)
		if err != nil {
			return err
		}
		resp, err := endpoint.Select(qs).Run(ctx)
		if err != nil {
			return err
		}
		return printSelect(resp)
	case sparql.FormAsk:
		qs, err := sparql.ParseAsk(text)
		if err != nil {
			return err
		}
		resp, err := endpoint.Ask(qs).Run(ctx)
		if err != nil {
			return err
		}
		return printAsk(resp)
	default:
		return fmt.Errorf("unsupported query form %s (only SELECT and ASK queries can be executed)", form)
	}
}

func readQuery(file, inline string) (string, error) {
	switch {
	case file != "" && inline != "":
		return "", fmt.Errorf("use either -file or -query, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case inline != "":
		return inline, nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading query from stdin: %w", err)
		}
		if len(data) == 0 {
			return "", fmt.Errorf("no query given: use -file, -query, or stdin")
		}
		return string(data), nil
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printSelect(resp *sparql.SelectResponse) error {
	if !stdoutIsTerminal() {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(resp.Head.Vars, "\t"))
	for _, row := range resp.Results.Bindings {
		cells := make([]string, len(resp.Head.Vars))
		for i, name := range resp.Head.Vars {
			if t, ok := row.Get(name); ok {
				cells[i] = t.String()
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func printAsk(resp *sparql.AskResponse) error {
	if !stdoutIsTerminal() {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}
	fmt.Println(resp.Bool())
	return nil
}
