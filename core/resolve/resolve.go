// Package resolve picks the extractor for a selected file and runs it.
package resolve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ankit-chaubey/metadata-extractor/core"
	"github.com/ankit-chaubey/metadata-extractor/core/document"
	"github.com/ankit-chaubey/metadata-extractor/core/image"
)

// Kind names the extraction strategy chosen for a file.
type Kind string

const (
	KindImage   Kind = "image"
	KindPDF     Kind = "pdf"
	KindWord    Kind = "word"
	KindGeneric Kind = "generic"
)

// Classify applies the dispatch rules in order; the first match wins.
func Classify(f core.SelectedFile) Kind {
	switch {
	case strings.HasPrefix(f.MIMEType, "image/"):
		return KindImage
	case f.MIMEType == "application/pdf":
		return KindPDF
	case strings.Contains(f.MIMEType, "word") || strings.HasSuffix(f.Name, ".docx"):
		return KindWord
	default:
		return KindGeneric
	}
}

// Options configures a Resolver. Exif and Converter are optional
// collaborators; leaving them nil disables EXIF tags and word counts.
type Options struct {
	Exif          image.ExifReader
	Converter     document.TextConverter
	DecodeTimeout time.Duration
	TimeLayout    string
	Logger        *slog.Logger
}

// Resolver dispatches a file to one of the four extractors.
type Resolver struct {
	opts   Options
	image  *image.Extractor
	pdf    *document.PDFExtractor
	word   *document.WordExtractor
	logger *slog.Logger
}

// New builds a Resolver.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		opts: opts,
		image: &image.Extractor{
			Exif:          opts.Exif,
			DecodeTimeout: opts.DecodeTimeout,
			TimeLayout:    opts.TimeLayout,
			Logger:        logger,
		},
		pdf: &document.PDFExtractor{TimeLayout: opts.TimeLayout},
		word: &document.WordExtractor{
			Converter:  opts.Converter,
			TimeLayout: opts.TimeLayout,
			Logger:     logger,
		},
		logger: logger,
	}
}

// Resolve returns the metadata record for f. Any failure of the chosen
// extractor is returned as *core.ExtractionFailed; no other extractor is
// tried.
func (r *Resolver) Resolve(ctx context.Context, f core.SelectedFile) (*core.Record, error) {
	kind := Classify(f)
	r.logger.Debug("resolving metadata", "file", f.Name, "mime", f.MIMEType, "kind", kind)

	var (
		rec *core.Record
		err error
	)
	switch kind {
	case KindImage:
		rec, err = r.image.Extract(ctx, f)
	case KindPDF:
		rec, err = r.pdf.Extract(ctx, f)
	case KindWord:
		rec, err = r.word.Extract(ctx, f)
	default:
		rec = core.GenericFields(f, r.opts.TimeLayout)
	}
	if err != nil {
		return nil, core.NewExtractionFailed(err)
	}
	return rec, nil
}
