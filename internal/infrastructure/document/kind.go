// Package document detects which kind of source file a submission is.
package document

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindPDF     Kind = "pdf"
	KindImage   Kind = "image"
	KindUnknown Kind = "unknown"
)

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".tif": {}, ".tiff": {}, ".bmp": {}, ".gif": {},
}

// Detect classifies a source by declared MIME type, then extension, then its
// first bytes.
func Detect(path, mimeType string) Kind {
	if kind := fromMIME(mimeType); kind != KindUnknown {
		return kind
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return KindPDF
	}
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	return sniff(path)
}

func fromMIME(mimeType string) Kind {
	if mimeType == "" {
		return KindUnknown
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return KindUnknown
	}
	switch {
	case mediaType == "application/pdf":
		return KindPDF
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	default:
		return KindUnknown
	}
}

func sniff(path string) Kind {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return KindUnknown
	}
	return fromMIME(http.DetectContentType(head[:n]))
}
