package page

import "math"

// DefaultSize is the number of results on one search page.
const DefaultSize = 10

// MaxOffset bounds the offset a page may address. Larger page numbers are
// capped so the offset never overflows.
const MaxOffset = math.MaxInt32

// Page is a 1-indexed page of fixed size.
type Page struct {
	number int
	size   int
}

// New clamps number to [1, MaxOffset/size+1] and falls back to DefaultSize
// for size <= 0.
func New(number, size int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxOffset {
		size = MaxOffset
	}
	if number < 1 {
		number = 1
	}
	if last := MaxOffset/size + 1; number > last {
		number = last
	}
	return Page{number: number, size: size}
}

// Number returns the 1-indexed page number.
func (p Page) Number() int { return p.number }

// Size returns the page size (the limit).
func (p Page) Size() int { return p.size }

// Offset returns (number-1)*size.
func (p Page) Offset() int { return (p.number - 1) * p.size }

// TotalPages returns how many pages total results span.
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.size - 1) / p.size
}

// Window bounds offset/limit against a list of n items and returns the
// half-open range to slice.
func Window(n, offset, limit int) (start, end int) {
	if offset < 0 {
		offset = 0
	}
	if offset >= n || limit <= 0 {
		return n, n
	}
	end = offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
