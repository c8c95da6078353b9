package image

import (
	"bytes"
	"context"
	"sort"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExifTag is one decoded EXIF tag.
type ExifTag struct {
	Name  string
	Value any
}

// ExifReader reads EXIF tags from encoded image bytes.
type ExifReader interface {
	ReadTags(ctx context.Context, data []byte) ([]ExifTag, error)
}

// GoexifReader reads EXIF with github.com/rwcarlsen/goexif. Tags are
// returned sorted by name.
type GoexifReader struct{}

func (GoexifReader) ReadTags(ctx context.Context, data []byte) ([]ExifTag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := &exifWalker{}
	if err := x.Walk(w); err != nil {
		return nil, err
	}
	sort.Slice(w.tags, func(i, j int) bool { return w.tags[i].Name < w.tags[j].Name })
	return w.tags, nil
}

type exifWalker struct {
	tags []ExifTag
}

func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.tags = append(w.tags, ExifTag{Name: string(name), Value: tagValue(tag)})
	return nil
}

// tagValue converts a TIFF tag into a string, number or slice of numbers.
// Anything that fails to convert falls back to the tag's own rendering.
func tagValue(tag *tiff.Tag) any {
	switch tag.Format() {
	case tiff.StringVal:
		if s, err := tag.StringVal(); err == nil {
			return s
		}
	case tiff.IntVal:
		vals := make([]int, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			v, err := tag.Int(i)
			if err != nil {
				return tag.String()
			}
			vals = append(vals, v)
		}
		return single(vals)
	case tiff.RatVal:
		vals := make([]float64, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			num, den, err := tag.Rat2(i)
			if err != nil || den == 0 {
				return tag.String()
			}
			vals = append(vals, float64(num)/float64(den))
		}
		return single(vals)
	case tiff.FloatVal:
		vals := make([]float64, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			v, err := tag.Float(i)
			if err != nil {
				return tag.String()
			}
			vals = append(vals, v)
		}
		return single(vals)
	}
	return tag.String()
}

func single[T any](vals []T) any {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals
}
