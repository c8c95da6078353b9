package core

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pad(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, b)
	return out
}

func emptyZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("word/document.xml")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSniffMIME(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"png magic", "picture", pad([]byte("\x89PNG\r\n\x1a\n"), 32), "image/png"},
		{"jpeg magic beats extension", "photo.pdf", pad([]byte{0xFF, 0xD8, 0xFF, 0xE0}, 32), "image/jpeg"},
		{"gif", "anim", pad([]byte("GIF89a"), 32), "image/gif"},
		{"pdf", "paper", pad([]byte("%PDF-1.7\n"), 32), "application/pdf"},
		{"webp", "x", pad([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), 32), "image/webp"},
		{"id3 audio", "song.bin", pad([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), 256), "audio/mpeg"},
		{"flac audio", "track", pad([]byte("fLaC"), 256), "audio/flac"},
		{"docx zip", "report.docx", emptyZip(t), "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"plain zip", "bundle", emptyZip(t), "application/zip"},
		{"extension fallback", "notes.md", []byte("# title\n"), "text/markdown"},
		{"unknown", "notes", []byte("just some words here"), ""},
		{"empty", "empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffMIME(tt.file, bytes.NewReader(tt.data)))
		})
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", f.Name)
	assert.Equal(t, int64(11), f.Size)
	assert.Equal(t, "text/plain", f.MIMEType)
	assert.False(t, f.LastModified.IsZero())
}

func TestOpenFileRejectsDirectory(t *testing.T) {
	_, err := OpenFile(t.TempDir())
	assert.Error(t, err)
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}
