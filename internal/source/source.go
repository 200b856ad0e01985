// Package source holds source file contents and line bookkeeping.
package source

import (
	"fmt"
	"os"
)

// File captures the contents of a single script, either read from disk
// or supplied in memory (REPL line, test).
type File struct {
	Path    string
	Content []byte
	lineIdx []uint32 // byte offset of the start of each line, first entry 0
}

// LineCol is a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// NewFile wraps in-memory content as a File and builds its line index.
func NewFile(path string, content []byte) *File {
	f := &File{Path: path, Content: content}
	f.lineIdx = buildLineIndex(content)
	return f
}

// ReadFile loads a script from disk.
func ReadFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return NewFile(path, content), nil
}

// LineCount reports the number of lines in the file. An empty file has
// one (empty) line.
func (f *File) LineCount() int {
	return len(f.lineIdx)
}

// LineColAt converts a byte offset into a 1-based line/column pair.
// Offsets past the end of the file resolve to the last position.
func (f *File) LineColAt(offset uint32) LineCol {
	if len(f.lineIdx) == 0 {
		return LineCol{Line: 1, Col: 1}
	}
	if end := uint32(len(f.Content)); offset > end {
		offset = end
	}
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(f.lineIdx)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineIdx[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return LineCol{
		Line: uint32(lo + 1),
		Col:  offset - f.lineIdx[lo] + 1,
	}
}

func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 1, 16)
	idx[0] = 0
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i+1))
		}
	}
	return idx
}
