// Package core defines the shared types, errors, format sniffing and output
// helpers for the metadata extractor.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Field is a single label/value pair of a Record.
type Field struct {
	Label string
	Value any // string, int, float64 or an arbitrary value rendered as JSON
}

// Record is an ordered label → value mapping. Insertion order is display
// order. Setting an existing label replaces its value in place.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set adds label with value, or replaces the value if label is present.
func (r *Record) Set(label string, value any) {
	if i, ok := r.index[label]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[label] = len(r.fields)
	r.fields = append(r.fields, Field{Label: label, Value: value})
}

// Get returns the value stored under label.
func (r *Record) Get(label string) (any, bool) {
	i, ok := r.index[label]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// String returns the display form of the value under label.
func (r *Record) String(label string) (string, bool) {
	v, ok := r.Get(label)
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// Fields returns a copy of the fields in display order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Labels returns the labels in display order.
func (r *Record) Labels() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Label
	}
	return out
}

// MarshalJSON encodes the record as an ordered list of {label, value} pairs.
func (r *Record) MarshalJSON() ([]byte, error) {
	type jsonField struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	out := make([]jsonField, 0, len(r.fields))
	for _, f := range r.fields {
		out = append(out, jsonField{Label: f.Label, Value: FormatValue(f.Value)})
	}
	return json.Marshal(out)
}

// FormatValue renders a field value for display. Strings and numbers are
// printed as-is; anything else is serialized to JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Opener opens the content of a selected file.
type Opener func() (io.ReadCloser, error)

// ReadAll reads the whole content of f. The read is abandoned when ctx is
// cancelled.
func (f SelectedFile) ReadAll(ctx context.Context) ([]byte, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := f.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(rc)
		done <- result{data, err}
	}()
	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
