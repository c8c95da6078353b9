package core

import (
	"bytes"
	"io"
	"strings"

	"github.com/dhowden/tag"
)

// extMIME maps lowercase extensions to MIME types. It is consulted after
// magic bytes and audio container identification.
var extMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".bmp":  "image/bmp",
	".heic": "image/heic",
	".heif": "image/heif",
	".svg":  "image/svg+xml",

	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".opus": "audio/opus",

	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",

	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".epub": "application/epub+zip",
	".zip":  "application/zip",

	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".html": "text/html",
	".htm":  "text/html",
	".json": "application/json",
	".xml":  "application/xml",
}

// audioMIME maps container types reported by tag.Identify.
var audioMIME = map[tag.FileType]string{
	tag.MP3:  "audio/mpeg",
	tag.M4A:  "audio/mp4",
	tag.M4B:  "audio/mp4",
	tag.FLAC: "audio/flac",
	tag.OGG:  "audio/ogg",
	tag.DSF:  "audio/dsf",
}

// SniffMIME returns the MIME type for a file named name with content r:
// magic bytes first, then audio container identification, then the
// extension. An unrecognised file yields "".
func SniffMIME(name string, r io.ReadSeeker) string {
	buf := make([]byte, 16)
	n, _ := io.ReadFull(r, buf)
	buf = buf[:n]

	ext := extOf(name)
	if m := detectMagic(buf, ext); m != "" {
		return m
	}

	if _, err := r.Seek(0, io.SeekStart); err == nil {
		if _, ft, err := tag.Identify(r); err == nil {
			if m, ok := audioMIME[ft]; ok {
				return m
			}
		}
	}

	return extMIME[ext]
}

func extOf(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return ""
	}
	return strings.ToLower(name[dot:])
}

func detectMagic(b []byte, ext string) string {
	if len(b) < 4 {
		return ""
	}
	switch {
	case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return "image/jpeg"
	case bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return "image/gif"
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return "image/webp"
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return "audio/wav"
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("AVI ")):
		return "video/x-msvideo"
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(b, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return "image/tiff"
	case b[0] == 0x42 && b[1] == 0x4D:
		return "image/bmp"
	case len(b) >= 12 && bytes.Equal(b[4:8], []byte("ftyp")):
		return ftypMIME(string(b[8:12]))
	case bytes.HasPrefix(b, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		if ext == ".webm" {
			return "video/webm"
		}
		return "video/x-matroska"
	case bytes.HasPrefix(b, []byte("%PDF")):
		return "application/pdf"
	// ZIP containers (docx, xlsx, epub, ...) are told apart by extension.
	case bytes.HasPrefix(b, []byte("PK\x03\x04")):
		if m, ok := extMIME[ext]; ok {
			return m
		}
		return "application/zip"
	}
	return ""
}

func ftypMIME(brand string) string {
	switch brand {
	case "M4A ", "M4B ", "M4P ":
		return "audio/mp4"
	case "qt  ":
		return "video/quicktime"
	case "heic", "heix", "mif1":
		return "image/heic"
	default:
		return "video/mp4"
	}
}
