package document

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

var (
	// ErrNoDocumentBody is returned for OPC containers without a main document part.
	ErrNoDocumentBody = errors.New("no " + docxBody + " in container")
	// ErrBodyTooLarge is returned when the document part exceeds MaxBodySize.
	ErrBodyTooLarge = errors.New(docxBody + " exceeds size limit")
)

// DocxConverter extracts raw text from an OPC (.docx) container. Paragraphs
// are each followed by a blank line; tabs and breaks are kept.
type DocxConverter struct {
	// MaxBodySize caps the uncompressed size of the document part. Zero means
	// no cap.
	MaxBodySize int64
}

func (c DocxConverter) ExtractRawText(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("cannot open as ZIP: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		if c.MaxBodySize > 0 && f.UncompressedSize64 > uint64(c.MaxBodySize) {
			return "", fmt.Errorf("%w: %d bytes (max %d)", ErrBodyTooLarge, f.UncompressedSize64, c.MaxBodySize)
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return bodyText(ctx, rc)
	}
	return "", ErrNoDocumentBody
}

// bodyText walks the WordprocessingML token stream collecting run text.
func bodyText(ctx context.Context, r io.Reader) (string, error) {
	var sb strings.Builder
	dec := xml.NewDecoder(r)
	inText := false
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
