// Package filetype identifies uploaded files by their binary signature rather
// than by name or declared content type.
package filetype

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// sniffLen is how many leading bytes are inspected.
const sniffLen = 3072

// Detected describes a sniffed upload.
type Detected struct {
	MIME      string
	Extension string // includes the leading dot, e.g. ".pdf"
}

// Detect reads the head of r and returns its detected type together with a
// reader that replays the consumed bytes followed by the rest of r.
func Detect(r io.Reader) (Detected, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Detected{}, nil, fmt.Errorf("failed to read file header: %w", err)
	}
	head = head[:n]

	m := mimetype.Detect(head)
	detected := Detected{MIME: m.String(), Extension: m.Extension()}
	return detected, io.MultiReader(bytes.NewReader(head), r), nil
}

// IsPDF reports whether the detected type is a PDF document.
func (d Detected) IsPDF() bool {
	return d.is(MIMEPDF)
}

// IsCoverImage reports whether the detected type is an accepted cover format.
func (d Detected) IsCoverImage() bool {
	return d.is(MIMEPNG) || d.is(MIMEJPEG)
}

func (d Detected) is(mime string) bool {
	return mimetype.EqualsAny(d.MIME, mime)
}
