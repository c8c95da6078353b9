package core

import (
	"math"
	"strconv"
	"time"
)

// DefaultTimeLayout renders timestamps the way an en-US locale does.
const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

// FormatFixed2 renders x with two decimals, rounding halves away from zero:
// 0.125 is "0.13".
func FormatFixed2(x float64) string {
	return strconv.FormatFloat(math.Round(x*100)/100, 'f', 2, 64)
}

// FormatSize renders a byte count as kilobytes with two decimals.
func FormatSize(size int64) string {
	return FormatFixed2(float64(size)/1024) + " KB"
}

// FormatTime renders t in the local zone using layout, falling back to
// DefaultTimeLayout.
func FormatTime(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return t.Local().Format(layout)
}

// BaseFields returns the four fields every type-specific extractor starts
// with. File Type is the raw MIME type, possibly empty.
func BaseFields(f SelectedFile, layout string) *Record {
	r := NewRecord()
	r.Set("File Name", f.Name)
	r.Set("File Size", FormatSize(f.Size))
	r.Set("File Type", f.MIMEType)
	r.Set("Last Modified", FormatTime(f.LastModified, layout))
	return r
}

// GenericFields returns the five fixed fields used for files no specialised
// extractor handles.
func GenericFields(f SelectedFile, layout string) *Record {
	fileType := f.MIMEType
	if fileType == "" {
		fileType = "Unknown"
	}
	r := NewRecord()
	r.Set("File Name", f.Name)
	r.Set("File Size", FormatSize(f.Size))
	r.Set("File Type", fileType)
	r.Set("Last Modified", FormatTime(f.LastModified, layout))
	r.Set("MIME Type", f.MIMEType)
	return r
}
