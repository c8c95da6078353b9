package document

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/ankit-chaubey/metadata-extractor/core"
)

// WordsPerPage is the density used to estimate page counts.
const WordsPerPage = 250

// TextConverter turns a document into plain text.
type TextConverter interface {
	ExtractRawText(ctx context.Context, data []byte) (string, error)
}

// WordExtractor implements the Word document strategy. A failing or missing
// Converter is logged and leaves only the base fields.
type WordExtractor struct {
	Converter  TextConverter
	TimeLayout string
	Logger     *slog.Logger
}

// Extract reads f, converts it to text and adds word, character and page
// counts.
func (e *WordExtractor) Extract(ctx context.Context, f core.SelectedFile) (*core.Record, error) {
	r := core.BaseFields(f, e.TimeLayout)

	text, err := e.convert(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger().Warn("could not extract text content", "file", f.Name, "err", err)
		return r, nil
	}

	words := CountWords(text)
	r.Set("Word Count", words)
	r.Set("Character Count", CountChars(text))
	r.Set("Estimated Pages", EstimatePages(words))
	return r, nil
}

func (e *WordExtractor) convert(ctx context.Context, f core.SelectedFile) (string, error) {
	data, err := f.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	if e.Converter == nil {
		return "", core.ErrNoConverter
	}
	return e.Converter.ExtractRawText(ctx, data)
}

func (e *WordExtractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// CountWords counts whitespace-delimited non-empty tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountChars returns the length of text in UTF-16 code units.
func CountChars(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// EstimatePages returns ceil(words / WordsPerPage).
func EstimatePages(words int) int {
	return int(math.Ceil(float64(words) / WordsPerPage))
}
