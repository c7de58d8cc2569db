package filetype

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		pdf     bool
		cover   bool
		wantExt string
	}{
		{"pdf", pdfBytes, true, false, ".pdf"},
		{"png", pngBytes, false, true, ".png"},
		{"jpeg", jpegBytes, false, true, ".jpg"},
		{"plain text", []byte("just some text pretending to be a pdf"), false, false, ""},
		{"empty", nil, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected, _, err := Detect(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.pdf, detected.IsPDF())
			assert.Equal(t, tt.cover, detected.IsCoverImage())
			if tt.wantExt != "" {
				assert.Equal(t, tt.wantExt, detected.Extension)
			}
		})
	}
}

func TestDetect_ReplaysContent(t *testing.T) {
	payload := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), 10000)...)

	_, r, err := Detect(bytes.NewReader(payload))
	require.NoError(t, err)

	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, replayed)
}
