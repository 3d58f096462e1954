// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lineindex maps between byte offsets and lines of a source
// buffer. Diagnostic rendering uses it to pull the line a position refers
// to without rescanning the input.
package lineindex

import (
	"github.com/tidwall/btree"
)

type lineSpan struct {
	line  int
	start int // offset of the first byte of the line
	end   int // offset one past the last byte, excluding the newline
}

// Index is an ordered table of the line spans of one source buffer.
type Index struct {
	spans *btree.BTreeG[lineSpan]
}

// New scans src and indexes every line. A trailing line with no newline
// still counts; an empty buffer has a single empty line.
func New(src []byte) *Index {
	spans := btree.NewBTreeG(func(a, b lineSpan) bool {
		return a.start < b.start
	})
	line, start := 0, 0
	for i, b := range src {
		if b == '\n' {
			spans.Set(lineSpan{line: line, start: start, end: i})
			line++
			start = i + 1
		}
	}
	spans.Set(lineSpan{line: line, start: start, end: len(src)})
	return &Index{spans: spans}
}

// Count returns the number of lines in the buffer.
func (x *Index) Count() int {
	return x.spans.Len()
}

// Line returns the byte range of the n-th (zero-based) line, without its
// trailing newline.
func (x *Index) Line(n int) (start, end int, ok bool) {
	span, ok := x.spans.GetAt(n)
	if !ok {
		return 0, 0, false
	}
	return span.start, span.end, true
}

// Pos returns the zero-based line number and byte column of the given
// offset. Offsets past the end of the buffer land on the last line.
func (x *Index) Pos(offset int) (line, col int) {
	found := false
	x.spans.Descend(lineSpan{start: offset}, func(span lineSpan) bool {
		line, col = span.line, offset-span.start
		found = true
		return false
	})
	if !found {
		// Negative offsets sort before the first line.
		return 0, 0
	}
	return line, col
}
