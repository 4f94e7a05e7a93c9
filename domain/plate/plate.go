package plate

import (
	"fmt"
	"strconv"
	"strings"
)

// Well is a single position on a microplate, identified by a zero-based
// row and column pair.
type Well struct {
	Row int
	Col int
}

// Layout describes the geometry of a target plate and tracks the next
// free well while entries are being packed.
type Layout struct {
	Rows   int
	Cols   int
	cursor int
}

// Default384 returns the standard 16x24 (384-well) layout.
func Default384() *Layout {
	return &Layout{Rows: 16, Cols: 24}
}

// NewLayout creates a layout with the given bounds.
func NewLayout(rows, cols int) (*Layout, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid plate dimensions %dx%d", rows, cols)
	}
	if rows > 26 {
		return nil, fmt.Errorf("plate rows %d exceed single-letter addressing", rows)
	}
	return &Layout{Rows: rows, Cols: cols}, nil
}

// Capacity returns the total number of wells on the plate.
func (l *Layout) Capacity() int {
	return l.Rows * l.Cols
}

// Free returns the number of wells not yet allocated.
func (l *Layout) Free() int {
	return l.Capacity() - l.cursor
}

// Next allocates the next free well in row-major order (A1, A2, ...,
// A24, B1, ...). Returns false when the plate is full.
func (l *Layout) Next() (Well, bool) {
	if l.cursor >= l.Capacity() {
		return Well{}, false
	}
	w := Well{Row: l.cursor / l.Cols, Col: l.cursor % l.Cols}
	l.cursor++
	return w, true
}

// Reset returns the allocation cursor to the first well.
func (l *Layout) Reset() {
	l.cursor = 0
}

// Contains reports whether the well lies within the plate bounds.
func (l *Layout) Contains(w Well) bool {
	return w.Row >= 0 && w.Row < l.Rows && w.Col >= 0 && w.Col < l.Cols
}

// Name formats a well in the usual plate notation, e.g. {0,0} -> "A1",
// {15,23} -> "P24".
func (w Well) Name() string {
	return fmt.Sprintf("%c%d", rune('A'+w.Row), w.Col+1)
}

// ParseWell parses plate notation such as "A1" or "p24" into a Well.
// Instruments are inconsistent about case and zero padding ("A01"), so
// both are accepted.
func ParseWell(s string) (Well, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Well{}, fmt.Errorf("invalid well %q", s)
	}
	r := strings.ToUpper(s)[0]
	if r < 'A' || r > 'Z' {
		return Well{}, fmt.Errorf("invalid well row in %q", s)
	}
	col, err := strconv.Atoi(strings.TrimLeft(s[1:], "0"))
	if err != nil || col < 1 {
		return Well{}, fmt.Errorf("invalid well column in %q", s)
	}
	return Well{Row: int(r - 'A'), Col: col - 1}, nil
}
