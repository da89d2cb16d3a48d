// Package source tracks file identity and byte spans for diagnostics.
package source

import (
	"fmt"
)

// FileID identifies a source file within a compilation.
type FileID uint32

// Span is a half-open byte range [Start, End) within file FileID.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Merge returns the smallest span covering both a and b. Both spans must
// belong to the same file.
func Merge(a, b Span) Span {
	s := Span{File: a.File, Start: a.Start, End: a.End}
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// Pos is a resolved (line, column) location, 1-indexed.
type Pos struct {
	Line   int
	Column int
}

// File holds the text and identity of one source file plus the line-start
// table used to resolve byte offsets to (line, column) pairs.
type File struct {
	ID         FileID
	Path       string
	Text       string
	lineStarts []uint32
}

// NewFile builds a File and its line-start index.
func NewFile(id FileID, path, text string) *File {
	f := &File{ID: id, Path: path, Text: text}
	f.lineStarts = append(f.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			f.lineStarts = append(f.lineStarts, uint32(i+1))
		}
	}
	return f
}

// Resolve maps a byte offset to a (line, column) position via binary search
// over the line-start table.
func (f *File) Resolve(offset uint32) Pos {
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo
	col := int(offset-f.lineStarts[line]) + 1
	return Pos{Line: line + 1, Column: col}
}

// Snippet returns the text covered by span, clamped to file bounds.
func (f *File) Snippet(s Span) string {
	start, end := int(s.Start), int(s.End)
	if start < 0 {
		start = 0
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	if start > end {
		return ""
	}
	return f.Text[start:end]
}

// Map is the compilation-wide table of files, keyed by stable FileID.
type Map struct {
	files []*File
}

// NewMap creates an empty source map.
func NewMap() *Map {
	return &Map{}
}

// Add registers text under path and returns the new file's stable ID.
func (m *Map) Add(path, text string) FileID {
	id := FileID(len(m.files))
	m.files = append(m.files, NewFile(id, path, text))
	return id
}

// File returns the file registered under id.
func (m *Map) File(id FileID) *File {
	if int(id) >= len(m.files) {
		return nil
	}
	return m.files[id]
}

// Describe renders a span as "path:line:col".
func (m *Map) Describe(s Span) string {
	f := m.File(s.File)
	if f == nil {
		return fmt.Sprintf("<unknown>:%d", s.Start)
	}
	p := f.Resolve(s.Start)
	return fmt.Sprintf("%s:%d:%d", f.Path, p.Line, p.Column)
}
