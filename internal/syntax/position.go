package syntax

import (
	"sort"
	"unicode/utf8"
)

// LineIndex converts byte offsets into 1-based line/column positions.
// Columns count Unicode code points from the start of the line.
type LineIndex struct {
	src    string
	starts []int
}

// NewLineIndex records the start offset of every line in src.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// Position returns the 1-based line and column of a byte offset.
// Offsets outside the source are clamped.
func (li *LineIndex) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.src) {
		offset = len(li.src)
	}
	// last line start <= offset
	idx := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	start := li.starts[idx]
	return idx + 1, utf8.RuneCountInString(li.src[start:offset]) + 1
}
