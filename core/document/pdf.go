// Package document handles metadata for PDF and Word documents.
package document

import (
	"context"
	"regexp"

	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metadata-extractor/core"
)

// PDFScanLimit is how many leading bytes of a PDF are scanned for Info
// dictionary entries.
const PDFScanLimit = 5000

// pdfInfoPatterns lists the Info keys looked for and the label each match is
// stored under. This is a heuristic scan of the decoded prefix, not a PDF
// parser: entries in compressed object streams, indirect objects or hex and
// escaped strings are missed.
var pdfInfoPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`/Title\s*\(([^)]+)\)`), "PDF Title"},
	{regexp.MustCompile(`/Author\s*\(([^)]+)\)`), "PDF Author"},
	{regexp.MustCompile(`/Creator\s*\(([^)]+)\)`), "PDF Creator"},
	{regexp.MustCompile(`/Producer\s*\(([^)]+)\)`), "PDF Producer"},
	{regexp.MustCompile(`/CreationDate\s*\(([^)]+)\)`), "Creation Date"},
	{regexp.MustCompile(`/ModDate\s*\(([^)]+)\)`), "Modification Date"},
}

// PDFExtractor implements the PDF strategy.
type PDFExtractor struct {
	TimeLayout string
}

// Extract reads f and scans the start of it for Info dictionary strings.
func (e *PDFExtractor) Extract(ctx context.Context, f core.SelectedFile) (*core.Record, error) {
	data, err := f.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	r := core.BaseFields(f, e.TimeLayout)
	for _, kv := range ScanPDFInfo(data) {
		r.Set(kv.Label, kv.Value)
	}
	return r, nil
}

// ScanPDFInfo decodes the first PDFScanLimit bytes of data as UTF-8 (leading
// BOM dropped, invalid sequences replaced with U+FFFD) and returns a field for
// each Info key found.
func ScanPDFInfo(data []byte) []core.Field {
	if len(data) > PDFScanLimit {
		data = data[:PDFScanLimit]
	}
	text, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		text = data
	}

	var out []core.Field
	for _, p := range pdfInfoPatterns {
		if m := p.re.FindSubmatch(text); m != nil {
			out = append(out, core.Field{Label: p.label, Value: string(m[1])})
		}
	}
	return out
}
