package image

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const svgMIME = "image/svg+xml"

var errNoIntrinsicSize = errors.New("svg has no width, height or viewBox")

// svgSize reads the intrinsic size of an SVG document from the root
// element. Explicit width and height win; a missing one is derived from the
// viewBox aspect ratio, and the viewBox alone gives the size when neither is
// set. Only unitless and px lengths count.
func svgSize(data []byte) (int, int, error) {
	root, err := svgRoot(data)
	if err != nil {
		return 0, 0, err
	}

	var (
		width, height float64
		hasW, hasH    bool
		vbW, vbH      float64
		hasViewBox    bool
	)
	for _, a := range root.Attr {
		switch a.Name.Local {
		case "width":
			width, hasW = svgLength(a.Value)
		case "height":
			height, hasH = svgLength(a.Value)
		case "viewBox":
			vbW, vbH, hasViewBox = svgViewBox(a.Value)
		}
	}

	switch {
	case hasW && hasH:
	case hasW && hasViewBox:
		height = width * vbH / vbW
	case hasH && hasViewBox:
		width = height * vbW / vbH
	case hasViewBox:
		width, height = vbW, vbH
	default:
		return 0, 0, errNoIntrinsicSize
	}
	return int(math.Round(width)), int(math.Round(height)), nil
}

func svgRoot(data []byte) (xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("svg: no root element")
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("svg: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "svg" {
				return xml.StartElement{}, fmt.Errorf("svg: root element is <%s>", se.Name.Local)
			}
			return se, nil
		}
	}
}

func svgLength(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func svgViewBox(s string) (float64, float64, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(parts) != 4 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(parts[2], 64)
	h, errH := strconv.ParseFloat(parts[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
