package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how a Printer renders a Record.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Printer handles all display output for the CLI.
type Printer struct {
	Format OutputFormat
	Writer io.Writer
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter(format OutputFormat) *Printer {
	if format == "" {
		format = OutputText
	}
	return &Printer{Format: format, Writer: os.Stdout}
}

// PrintRecord renders the metadata of the file called name.
func (p *Printer) PrintRecord(name string, r *Record) error {
	switch p.Format {
	case OutputJSON:
		return p.printJSON(name, r)
	case OutputYAML:
		return p.printYAML(name, r)
	default:
		p.printText(name, r)
		return nil
	}
}

func (p *Printer) printText(name string, r *Record) {
	fmt.Fprintf(p.Writer, "── Extracted Metadata: %s ──\n", name)
	if r.Len() == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	for _, f := range r.Fields() {
		fmt.Fprintf(p.Writer, "  %-30s %s\n", f.Label+":", FormatValue(f.Value))
	}
}

func (p *Printer) printJSON(name string, r *Record) error {
	out := struct {
		File   string  `json:"file"`
		Fields *Record `json:"fields"`
	}{File: name, Fields: r}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Writer, string(b))
	return err
}

// printYAML emits a mapping node so the field order survives encoding.
func (p *Printer) printYAML(name string, r *Record) error {
	fields := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.Fields() {
		fields.Content = append(fields.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Label},
			&yaml.Node{Kind: yaml.ScalarNode, Value: FormatValue(f.Value), Tag: "!!str"},
		)
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "file"},
		{Kind: yaml.ScalarNode, Value: name, Tag: "!!str"},
		{Kind: yaml.ScalarNode, Value: "fields"},
		fields,
	}}

	enc := yaml.NewEncoder(p.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// PrintError prints an error to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "✗ "+msg)
}

// Report renders r as "<Label>: <Value>" lines joined by newlines, without a
// trailing newline.
func Report(r *Record) string {
	lines := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		lines = append(lines, f.Label+": "+FormatValue(f.Value))
	}
	return strings.Join(lines, "\n")
}

// ReportFileName returns the name of the downloadable report for a file.
func ReportFileName(name string) string {
	return "metadata_" + name + ".txt"
}
