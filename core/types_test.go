package core

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("File Name", "a.txt")
	r.Set("File Size", "1.00 KB")
	r.Set("Word Count", 3)

	assert.Equal(t, []string{"File Name", "File Size", "Word Count"}, r.Labels())
	assert.Equal(t, 3, r.Len())
}

func TestRecordLastWriteWinsInPlace(t *testing.T) {
	r := NewRecord()
	r.Set("A", "first")
	r.Set("B", "b")
	r.Set("A", "second")

	assert.Equal(t, []string{"A", "B"}, r.Labels())
	v, ok := r.String("A")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestRecordFieldsIsACopy(t *testing.T) {
	r := NewRecord()
	r.Set("A", "a")
	fields := r.Fields()
	fields[0].Value = "changed"

	v, _ := r.Get("A")
	assert.Equal(t, "a", v)
}

func TestRecordMarshalJSON(t *testing.T) {
	r := NewRecord()
	r.Set("File Name", "a.txt")
	r.Set("Word Count", 42)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"File Name","value":"a.txt"},{"label":"Word Count","value":"42"}]`, string(b))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "Canon", "Canon"},
		{"int", 250, "250"},
		{"float", 2.5, "2.5"},
		{"whole float", 72.0, "72"},
		{"slice", []int{1, 2, 3}, "[1,2,3]"},
		{"map", map[string]int{"x": 1}, `{"x":1}`},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

type blockingReader struct{ release chan struct{} }

func (b blockingReader) Read(p []byte) (int, error) {
	<-b.release
	return 0, io.EOF
}

func (b blockingReader) Close() error { return nil }

func TestReadAllHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := NewSelectedFile("slow.bin", 10, "", time.Now(), func() (io.ReadCloser, error) {
		return blockingReader{release: release}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.ReadAll(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadAllMemoryFile(t *testing.T) {
	f := NewMemoryFile("notes.txt", "", time.Now(), []byte("hello"))
	data, err := f.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), f.Size)
	assert.Equal(t, "text/plain", f.MIMEType)
}

func TestReadAllWithoutContent(t *testing.T) {
	_, err := SelectedFile{Name: "x"}.ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no content"))
}
