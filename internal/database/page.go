package database

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage normalises a requested page number and size.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns the number of pages needed for total items.
func (p Page) TotalPages(total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.Size)))
}
