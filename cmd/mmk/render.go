package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// outputOptions are the rendering flags shared by the read commands.
// -query implies JSON output since a projection has no fixed table shape.
type outputOptions struct {
	JSON  bool
	Query string
}

func (o outputOptions) wantsJSON() bool { return o.JSON || o.Query != "" }

func bindOutputFlags(fs *flag.FlagSet, opts *outputOptions) {
	fs.BoolVar(&opts.JSON, "json", false, "Print the raw JSON response")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the JSON output (implies -json)")
}

func parseOutputFlags(name string, args []string) (outputOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts outputOptions
	bindOutputFlags(fs, &opts)

	if err := fs.Parse(args); err != nil {
		return outputOptions{}, err
	}
	if len(fs.Args()) > 0 {
		return outputOptions{}, fmt.Errorf("unexpected argument %q", fs.Args()[0])
	}
	return opts, nil
}

// renderJSON prints v as indented JSON, projected through the JMESPath
// query when one is set.
func renderJSON(opts outputOptions, v any) error {
	projected, err := projectJSON(v, opts.Query)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(projected, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return writef(os.Stdout, "%s\n", out)
}

// projectJSON round-trips v through JSON so the projection sees the wire
// shape (json tags, not Go field names), then applies the query.
func projectJSON(v any, query string) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}

	if strings.TrimSpace(query) == "" {
		return doc, nil
	}

	result, err := jmespath.Search(query, doc)
	if err != nil {
		return nil, fmt.Errorf("apply query %q: %w", query, err)
	}
	return result, nil
}

// renderTable writes a tab-aligned table: one header row and the body rows.
func renderTable(header []string, rows [][]string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, strings.Join(header, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

func renderTotal(shown, total int) error {
	return writef(os.Stdout, "\nShowing %d of %d\n", shown, total)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func formatStringPtr(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
