// Package image derives metadata from raster images: pixel dimensions,
// aspect ratio, megapixels and, when a reader is configured, EXIF tags.
package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"io"
	"log/slog"
	"time"

	// Decoders registered for stdimage.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ankit-chaubey/metadata-extractor/core"
)

// DefaultDecodeTimeout bounds how long a bitmap decode may take.
const DefaultDecodeTimeout = 10 * time.Second

// DecodeFunc decodes an encoded image into a bitmap.
type DecodeFunc func(r io.Reader) (stdimage.Image, string, error)

// Extractor implements the image strategy.
type Extractor struct {
	// Exif is optional. When nil the record carries no EXIF fields.
	Exif ExifReader
	// Decode defaults to image.Decode. SVG files bypass it.
	Decode        DecodeFunc
	DecodeTimeout time.Duration
	TimeLayout    string
	Logger        *slog.Logger
}

// Extract reads f fully, decodes it to learn its dimensions and merges any
// EXIF tags under "EXIF <tag>" labels.
func (e *Extractor) Extract(ctx context.Context, f core.SelectedFile) (*core.Record, error) {
	data, err := f.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	width, height, err := e.decodeDimensions(ctx, f, data)
	if err != nil {
		return nil, err
	}

	r := core.BaseFields(f, e.TimeLayout)
	r.Set("Image Width", fmt.Sprintf("%d px", width))
	r.Set("Image Height", fmt.Sprintf("%d px", height))
	r.Set("Aspect Ratio", AspectRatio(width, height))
	r.Set("Megapixels", Megapixels(width, height))

	if e.Exif == nil {
		return r, nil
	}
	tags, err := e.Exif.ReadTags(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger().Debug("no exif tags", "file", f.Name, "err", err)
		return r, nil
	}
	for _, t := range tags {
		r.Set("EXIF "+t.Name, t.Value)
	}
	return r, nil
}

// AspectRatio renders width/height with two decimals as "X:1".
func AspectRatio(width, height int) string {
	return core.FormatFixed2(float64(width)/float64(height)) + ":1"
}

// Megapixels renders width×height in millions with two decimals.
func Megapixels(width, height int) string {
	return core.FormatFixed2(float64(width)*float64(height)/1_000_000) + " MP"
}

// decodeDimensions decodes data into a bitmap under a bounded wait.
func (e *Extractor) decodeDimensions(ctx context.Context, f core.SelectedFile, data []byte) (int, int, error) {
	name := f.Name
	timeout := e.DecodeTimeout
	if timeout <= 0 {
		timeout = DefaultDecodeTimeout
	}
	decode := e.Decode
	if decode == nil {
		decode = stdimage.Decode
	}

	type result struct {
		bounds stdimage.Rectangle
		err    error
	}
	done := make(chan result, 1)
	go func() {
		if f.MIMEType == svgMIME {
			w, h, err := svgSize(data)
			done <- result{bounds: stdimage.Rect(0, 0, w, h), err: err}
			return
		}
		img, _, err := decode(bytes.NewReader(data))
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{bounds: img.Bounds()}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return 0, 0, &core.DecodeFailed{Name: name, Err: res.err}
		}
		w, h := res.bounds.Dx(), res.bounds.Dy()
		if w <= 0 || h <= 0 {
			return 0, 0, &core.DecodeFailed{Name: name, Err: fmt.Errorf("empty bitmap %dx%d", w, h)}
		}
		return w, h, nil
	case <-timer.C:
		return 0, 0, &core.DecodeFailed{Name: name, Timeout: timeout, Err: context.DeadlineExceeded}
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
