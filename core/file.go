package core

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SelectedFile is the file handed to an extraction. It is immutable once
// created.
type SelectedFile struct {
	Name         string
	Size         int64
	MIMEType     string // may be empty
	LastModified time.Time

	open Opener
}

// NewSelectedFile builds a SelectedFile whose content is produced by open.
func NewSelectedFile(name string, size int64, mimeType string, lastModified time.Time, open Opener) SelectedFile {
	return SelectedFile{
		Name:         name,
		Size:         size,
		MIMEType:     mimeType,
		LastModified: lastModified,
		open:         open,
	}
}

// NewMemoryFile builds a SelectedFile over an in-memory buffer. When
// mimeType is empty it is sniffed from data and name.
func NewMemoryFile(name, mimeType string, lastModified time.Time, data []byte) SelectedFile {
	if mimeType == "" {
		mimeType = SniffMIME(name, bytes.NewReader(data))
	}
	return NewSelectedFile(name, int64(len(data)), mimeType, lastModified, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// OpenFile stats path and returns a SelectedFile for it. The MIME type is
// derived by SniffMIME since the filesystem carries none.
func OpenFile(path string) (SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SelectedFile{}, err
	}
	if info.IsDir() {
		return SelectedFile{}, fmt.Errorf("%s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return SelectedFile{}, err
	}
	mimeType := SniffMIME(path, f)
	f.Close()

	return NewSelectedFile(filepath.Base(path), info.Size(), mimeType, info.ModTime(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}
