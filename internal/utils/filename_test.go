package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "trims surrounding spaces and dots",
			input:    "  ..Dune..  ",
			expected: "Dune",
		},
		{
			name:     "keeps unicode letters",
			input:    "Мастер и Маргарита",
			expected: "Мастер и Маргарита",
		},
		{
			name:     "empty becomes Untitled",
			input:    "///",
			expected: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	assert.Len(t, SanitizeFilename(long), maxFilenameLength)

	multibyte := strings.Repeat("ж", 150) // 300 bytes
	result := SanitizeFilename(multibyte)
	assert.LessOrEqual(t, len(result), maxFilenameLength)
	assert.True(t, utf8.ValidString(result))
}
